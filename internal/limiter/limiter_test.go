package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/gridkit/pkg/grid"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "limit only", cfg: Config{Limit: 10}},
		{name: "limit and offset", cfg: Config{Limit: 10, Offset: 5}},
		{name: "tail ignores offset", cfg: Config{Tail: 10, Offset: 5}},
		{name: "limit and tail", cfg: Config{Limit: 10, Tail: 5}, wantErr: "mutually exclusive"},
		{name: "negative limit", cfg: Config{Limit: -1}, wantErr: "--limit must be non-negative"},
		{name: "negative offset", cfg: Config{Offset: -1}, wantErr: "--offset must be non-negative"},
		{name: "negative tail", cfg: Config{Tail: -2}, wantErr: "--tail must be non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApply(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	tests := []struct {
		name string
		cfg  Config
		want []int
	}{
		{name: "inactive", cfg: Config{}, want: items},
		{name: "limit", cfg: Config{Limit: 3}, want: []int{0, 1, 2}},
		{name: "offset", cfg: Config{Offset: 7}, want: []int{7, 8, 9}},
		{name: "offset and limit", cfg: Config{Offset: 2, Limit: 3}, want: []int{2, 3, 4}},
		{name: "limit past end", cfg: Config{Offset: 8, Limit: 5}, want: []int{8, 9}},
		{name: "offset past end", cfg: Config{Offset: 20}, want: []int{}},
		{name: "tail", cfg: Config{Tail: 2}, want: []int{8, 9}},
		{name: "tail larger than input", cfg: Config{Tail: 50, Offset: 3}, want: items},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.cfg, items))
		})
	}
}

func TestApply_Rows(t *testing.T) {
	rows := []grid.Row{{"id": 1}, {"id": 2}, {"id": 3}}
	got := Apply(Config{Tail: 1}, rows)
	assert.Equal(t, []grid.Row{{"id": 3}}, got)
	assert.Empty(t, Apply(Config{Offset: 3}, rows))
}

func TestIsActive(t *testing.T) {
	assert.False(t, Config{}.IsActive())
	assert.True(t, Config{Offset: 1}.IsActive())
	assert.True(t, Config{Tail: 1}.IsActive())
}

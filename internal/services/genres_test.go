package services

import (
	"reflect"
	"testing"
)

func TestValidateGenres(t *testing.T) {
	tests := []struct {
		name      string
		requested []string
		want      []string
	}{
		{
			name:      "valid genres pass through in order",
			requested: []string{"ambient", "chill", "new-age"},
			want:      []string{"ambient", "chill", "new-age"},
		},
		{
			name:      "unknown genres are filtered out",
			requested: []string{"vaporwave-revival", "chill", "not-a-genre"},
			want:      []string{"chill"},
		},
		{
			name:      "all invalid falls back to default",
			requested: []string{"foo", "bar", "baz"},
			want:      []string{"pop"},
		},
		{
			name:      "empty input falls back to default",
			requested: nil,
			want:      []string{"pop"},
		},
		{
			name:      "truncated to three seeds",
			requested: []string{"pop", "rock", "jazz", "soul", "edm"},
			want:      []string{"pop", "rock", "jazz"},
		},
		{
			name:      "case and whitespace normalized",
			requested: []string{" Pop ", "ROCK"},
			want:      []string{"pop", "rock"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateGenres(tt.requested)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ValidateGenres(%v) = %v, want %v", tt.requested, got, tt.want)
			}
			if len(got) < 1 || len(got) > maxSeedGenres {
				t.Errorf("result size %d outside [1, %d]", len(got), maxSeedGenres)
			}
			for _, g := range got {
				if _, ok := seedGenres[g]; !ok {
					t.Errorf("result contains %q, not in the seed vocabulary", g)
				}
			}
		})
	}
}

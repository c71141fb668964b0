package catalog

import (
	"testing"

	"github.com/praetorian-inc/linenorm/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestValidatePattern(t *testing.T) {
	tests := []struct {
		name    string
		def     *types.PatternDefinition
		wantErr string
	}{
		{name: "nil", def: nil, wantErr: "nil"},
		{name: "empty rule", def: &types.PatternDefinition{ID: 1, Placeholder: "<X>"}, wantErr: "rule is required"},
		{name: "empty placeholder", def: &types.PatternDefinition{ID: 1, Pattern: `\d`}, wantErr: "placeholder"},
		{name: "malformed rule", def: &types.PatternDefinition{ID: 1, Pattern: `(\d`, Placeholder: "<X>"}, wantErr: "invalid rule"},
		{name: "example mismatch", def: &types.PatternDefinition{ID: 1, Pattern: `\d+`, Placeholder: "<X>", Examples: []string{"abc"}}, wantErr: "does not match"},
		{name: "caseless example", def: &types.PatternDefinition{ID: 1, Pattern: `jan`, Flags: types.Caseless, Placeholder: "<M>", Examples: []string{"JAN"}}},
		{name: "high byte example", def: &types.PatternDefinition{ID: 4, Pattern: `[\x7f-\xff]+`, Placeholder: "<HEX>", Examples: []string{"ab\xe9\xe9"}}},
		{name: "ascii only digits", def: &types.PatternDefinition{ID: 6, Pattern: `^\d$`, Placeholder: "<NUM>", Examples: []string{"\u0661"}}, wantErr: "does not match"},
		{name: "extended mode example", def: &types.PatternDefinition{ID: 6, Pattern: "(?x) \\d+ (?# digits ) ms", Placeholder: "<NUM>", Examples: []string{"40ms"}}},
		{name: "valid", def: &types.PatternDefinition{ID: 1, Pattern: `\d+`, Placeholder: "<X>", Examples: []string{"a 1"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePattern(tt.def)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidate_NilCatalog(t *testing.T) {
	assert.Error(t, Validate(nil))
}

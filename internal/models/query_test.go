package models

import (
	"testing"
)

func TestSearchQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   *SearchQuery
		wantErr bool
	}{
		{"empty query", &SearchQuery{Query: ""}, true},
		{"whitespace only", &SearchQuery{Query: "   \t\n"}, true},
		{"valid query", &SearchQuery{Query: "hello"}, false},
		{"zero limit is allowed", &SearchQuery{Query: "x", Limit: 0}, false},
		{"negative limit rejected", &SearchQuery{Query: "x", Limit: -1}, true},
		{"symbols only is still valid input", &SearchQuery{Query: "!!!"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

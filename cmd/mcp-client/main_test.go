package main

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input   string
		tool    string
		wantErr bool
		check   func(args map[string]any) bool
	}{
		{"/expand mensa", "expand_word", false, func(a map[string]any) bool { _, ok := a["max_hops"]; return a["word"] == "mensa" && !ok }},
		{"/expand mensa -1", "expand_word", false, func(a map[string]any) bool { return a["max_hops"] == -1 }},
		{"/expand mensa two", "", true, nil},
		{"/dfs mensa", "expand_recursive", false, func(a map[string]any) bool { return a["word"] == "mensa" }},
		{"/list latin 10 2", "list_vocabulary", false, func(a map[string]any) bool { return a["per_page"] == 10 && a["page"] == 2 }},
		{"/list latin", "", true, nil},
		{"/history mensa 5", "expansion_history", false, func(a map[string]any) bool { return a["seed"] == "mensa" && a["limit"] == 5 }},
		{"/nope", "", true, nil},
		{"mensa what is it", "explain_word", false, func(a map[string]any) bool { return a["question"] == "what is it" }},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tool, args, err := parseCommand(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCommand(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tool != tt.tool {
				t.Errorf("tool = %s, want %s", tool, tt.tool)
			}
			if tt.check != nil && !tt.check(args) {
				t.Errorf("unexpected args %v", args)
			}
		})
	}
}

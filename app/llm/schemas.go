package llm

import (
	"encoding/json"
)

// Output schemas sent as the format constraint on inference calls. The
// service is asked to emit JSON conforming to exactly one of these shapes;
// anything else is treated as an absent result.

var titleAuthorSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"author": {"type": "string"}
	},
	"required": ["title", "author"]
}`)

var authorSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"author": {"type": "string"}
	},
	"required": ["author"]
}`)

var languageSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"is_english": {"type": "boolean"}
	},
	"required": ["is_english"]
}`)

var categoriesSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"categories": {
			"type": "array",
			"items": {"type": "string"}
		}
	},
	"required": ["categories"]
}`)

package processor

import (
	"fmt"

	"github.com/guregu/null"
	"github.com/tidwall/gjson"
)

// Helpers for lifting loosely-typed raw submission fields into nullable
// columns. Missing and empty values map to invalid (null), never to "" or 0,
// so "unknown" stays distinguishable from "explicitly zero".

func nullString(r gjson.Result) null.String {
	if !r.Exists() || r.String() == "" {
		return null.String{}
	}
	return null.StringFrom(r.String())
}

// nullDecoded decodes a single-select coded value into its label.
func nullDecoded(r gjson.Result, table ChoiceTable) null.String {
	if !r.Exists() || r.String() == "" {
		return null.String{}
	}
	return null.StringFrom(DecodeSingle(r.String(), table))
}

// nullDecodedMulti decodes a space-separated multi-select value into a
// joined label list.
func nullDecodedMulti(r gjson.Result, table ChoiceTable) null.String {
	if !r.Exists() || r.String() == "" {
		return null.String{}
	}
	return null.StringFrom(DecodeMultipleJoined(r.String(), table))
}

func nullFloat(r gjson.Result) null.Float {
	if !r.Exists() || r.Type == gjson.Null || r.String() == "" {
		return null.Float{}
	}
	return null.FloatFrom(r.Float())
}

func nullInt(r gjson.Result) null.Int {
	if !r.Exists() || r.Type == gjson.Null || r.String() == "" {
		return null.Int{}
	}
	return null.IntFrom(r.Int())
}

// nullYesNo lifts the instrument's yes/no answers into a nullable bool.
func nullYesNo(r gjson.Result) null.Bool {
	switch r.String() {
	case "yes", "true", "1":
		return null.BoolFrom(true)
	case "no", "false", "0":
		return null.BoolFrom(false)
	}
	return null.Bool{}
}

// childID returns the platform-assigned identifier of a repeat-group row,
// falling back to a position-derived one for legacy exports that omit it.
func childID(item gjson.Result, parentID, group string, index int) string {
	if id := item.Get("_id"); id.Exists() && id.String() != "" {
		return id.String()
	}
	return fmt.Sprintf("%s/%s[%d]", parentID, group, index)
}

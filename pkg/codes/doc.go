// Package codes parses audio code input of arbitrary shape into flat code
// sequences.
//
// Input arrives as decoded JSON, YAML or msgpack trees, Go slices, or
// strings with embedded numerals such as "<|audio_code_123|>". Every form is
// converted into a [Value] and flattened in encounter order. A top-level list
// whose first element is itself a list is a batch; anything else is a single
// batch element.
//
// Files:
//
//	batch, err := codes.LoadFile("intro_codes.json", nil)
//	err = codes.SaveFile("out_codes.yaml", batch)
package codes

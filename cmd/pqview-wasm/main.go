//go:build js && wasm

// Command pqview-wasm exposes the decoder to a browser front end.
//
// It registers a global pqviewDecode(bytes, maxRows?) function that takes a
// Uint8Array holding a whole Parquet file and returns the JSON envelope
// produced by viewer.DecodeJSON as a string.
package main

import (
	"context"
	"syscall/js"

	"github.com/vegasq/pqview/viewer"
)

func decode(_ js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		return js.ValueOf(`{"error":{"kind":"TruncatedInput","message":"pqviewDecode expects a Uint8Array"}}`)
	}
	data := make([]byte, args[0].Get("length").Int())
	js.CopyBytesToGo(data, args[0])

	var opts []viewer.Option
	if len(args) > 1 && args[1].Type() == js.TypeNumber {
		opts = append(opts, viewer.WithMaxRows(args[1].Int()))
	}
	return js.ValueOf(string(viewer.DecodeJSON(context.Background(), data, opts...)))
}

func main() {
	js.Global().Set("pqviewDecode", js.FuncOf(decode))
	select {}
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heliostechlabs/axis-test-enc/pkg/jwe"
	"github.com/heliostechlabs/axis-test-enc/pkg/keyutil"
)

// readInput returns the first argument, or standard input when there is
// none or it is "-". Surrounding whitespace is removed.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return strings.TrimSpace(args[0]), nil
	}

	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read standard input: %w", err)
	}

	input := strings.TrimSpace(string(b))
	if input == "" {
		return "", fmt.Errorf("no input given")
	}

	return input, nil
}

// readPayload parses a JSON object from the first argument or standard input.
func readPayload(cmd *cobra.Command, args []string) (jwe.Payload, error) {
	input, err := readInput(cmd, args)
	if err != nil {
		return nil, err
	}

	var payload jwe.Payload
	if err := json.Unmarshal([]byte(input), &payload); err != nil {
		return nil, fmt.Errorf("payload must be a JSON object: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("payload must be a JSON object, got null")
	}

	return payload, nil
}

func writePayload(w io.Writer, payload jwe.Payload) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// writeJSON prints JSON text, compacted when it is valid JSON and as is
// otherwise.
func writeJSON(w io.Writer, b []byte) error {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	_, err := fmt.Fprintln(w, buf.String())
	return err
}

// keyID returns the thumbprint of key when enabled, or "".
func keyID(enabled bool, key *keyutil.KeyMaterial) (string, error) {
	if !enabled {
		return "", nil
	}
	return key.KeyID()
}

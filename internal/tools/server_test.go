package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runServer(t *testing.T, input string) []Response {
	t.Helper()

	var out strings.Builder
	server := NewServer(newMockRegistry(), strings.NewReader(input), &out)
	require.NoError(t, server.Run(context.Background()))

	var responses []Response
	scanner := bufio.NewScanner(strings.NewReader(out.String()))
	for scanner.Scan() {
		var resp Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	return responses
}

func TestServerDispatchesRequests(t *testing.T) {
	input := `{"tool":"list_invoices","arguments":{"limit":3}}
{"tool":"validate_tax_number","arguments":{"tax_number":"1234567890"}}
`
	responses := runServer(t, input)

	require.Len(t, responses, 2)
	assert.Contains(t, responses[0].Text, "Found 3 invoices:")
	assert.Contains(t, responses[1].Text, "Valid Tax Number")
}

func TestServerSkipsEmptyLines(t *testing.T) {
	input := "\n\n" + `{"tool":"validate_tax_number","arguments":{"tax_number":"123"}}` + "\n\n"
	responses := runServer(t, input)

	require.Len(t, responses, 1)
	assert.Contains(t, responses[0].Text, "Invalid Tax Number")
}

func TestServerAnswersMalformedRequests(t *testing.T) {
	input := "this is not json\n" + `{"tool":"validate_tax_number","arguments":{"tax_number":"1234567890"}}` + "\n"
	responses := runServer(t, input)

	require.Len(t, responses, 2)
	assert.Contains(t, responses[0].Text, "Error: invalid request:")
	assert.Contains(t, responses[1].Text, "Valid Tax Number")
}

func TestServerAnswersNegativeLimit(t *testing.T) {
	// A well-formed request with a hostile limit must get a text response,
	// not bring the dispatch loop down.
	responses := runServer(t, `{"tool":"list_invoices","arguments":{"limit":-1}}`+"\n")

	require.Len(t, responses, 1)
	assert.Contains(t, responses[0].Text, "Found 0 invoices:")
}

func TestServerUnknownTool(t *testing.T) {
	responses := runServer(t, `{"tool":"frobnicate","arguments":{}}`+"\n")

	require.Len(t, responses, 1)
	assert.Equal(t, "Unknown tool: frobnicate", responses[0].Text)
}

func TestServerEOFIsCleanShutdown(t *testing.T) {
	responses := runServer(t, "")
	assert.Empty(t, responses)
}

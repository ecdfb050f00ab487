package main

import (
	"fmt"
	"net"
	"strings"

	"github.com/tidwall/resp"
)

// wireClient is a minimal RESP client over a TCP connection, used by
// the interactive model to send commands and render replies. Encoding
// and decoding go through github.com/tidwall/resp, the same RESP
// codec family the server side (tidwall/redcon) speaks on the wire.
type wireClient struct {
	conn   net.Conn
	reader *resp.Reader
	writer *resp.Writer
}

func dial(addr string) (*wireClient, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &wireClient{
		conn:   conn,
		reader: resp.NewReader(conn),
		writer: resp.NewWriter(conn),
	}, nil
}

func (c *wireClient) close() error {
	return c.conn.Close()
}

// send tokenizes line on whitespace, writes it as a RESP command
// array, and returns the decoded reply rendered as text.
func (c *wireClient) send(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	args := make([]interface{}, len(fields)-1)
	for i, f := range fields[1:] {
		args[i] = f
	}
	if err := c.writer.WriteMultiBulk(fields[0], args...); err != nil {
		return "", fmt.Errorf("write command: %w", err)
	}
	val, _, err := c.reader.ReadValue()
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return renderValue(val), nil
}

func renderValue(v resp.Value) string {
	switch v.Type() {
	case resp.Error:
		return "(error) " + v.String()
	case resp.Integer:
		return fmt.Sprintf("(integer) %d", v.Integer())
	case resp.Null:
		return "(nil)"
	case resp.Array:
		items := v.Array()
		if len(items) == 0 {
			return "(empty array)"
		}
		lines := make([]string, len(items))
		for i, item := range items {
			lines[i] = fmt.Sprintf("%d) %s", i+1, renderValue(item))
		}
		return strings.Join(lines, "\n")
	default:
		return v.String()
	}
}

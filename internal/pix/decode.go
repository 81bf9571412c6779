package pix

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformed is returned when a payload is not a valid sequence of TLV fields.
	ErrMalformed = errors.New("malformed BR-Code payload")

	// ErrChecksum is returned when the trailing CRC does not match the payload.
	ErrChecksum = errors.New("BR-Code checksum mismatch")
)

// Field is one ID/length/value entry of a BR-Code.
type Field struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Sub parses the value of a template field (26, 62) into its nested fields.
func (f Field) Sub() ([]Field, error) {
	return parseFields(f.Value)
}

// Decode splits a BR-Code into its top-level fields and verifies the trailing CRC.
// The fields are returned even when only the checksum is wrong.
func Decode(payload string) ([]Field, error) {
	fields, err := parseFields(payload)
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 || fields[len(fields)-1].ID != idCRC {
		return fields, fmt.Errorf("%w: missing CRC field", ErrMalformed)
	}

	crc := fields[len(fields)-1].Value
	body := payload[:len(payload)-len(crc)]
	want := fmt.Sprintf("%04X", CRC16([]byte(body)))
	if !strings.EqualFold(crc, want) {
		return fields, fmt.Errorf("%w: got %s, want %s", ErrChecksum, crc, want)
	}

	return fields, nil
}

// Lookup returns the value of the first field with the given id.
func Lookup(fields []Field, id string) (string, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f.Value, true
		}
	}
	return "", false
}

func parseFields(s string) ([]Field, error) {
	r := []rune(s)
	var fields []Field
	for i := 0; i < len(r); {
		if i+4 > len(r) {
			return nil, fmt.Errorf("%w: truncated header at offset %d", ErrMalformed, i)
		}
		id := string(r[i : i+2])
		size, err := strconv.Atoi(string(r[i+2 : i+4]))
		if err != nil || size < 0 {
			return nil, fmt.Errorf("%w: bad length for field %s", ErrMalformed, id)
		}
		start := i + 4
		if start+size > len(r) {
			return nil, fmt.Errorf("%w: field %s overruns payload", ErrMalformed, id)
		}
		fields = append(fields, Field{ID: id, Value: string(r[start : start+size])})
		i = start + size
	}
	return fields, nil
}

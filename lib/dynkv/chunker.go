package dynkv

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Slot Layout
// --------------------------------------------------------------------------

// A logical entry maps onto physical slots in one of two layouts:
//
//	plain:   <key>            -> encoded value
//	chunked: <key>            -> manifest "\x00c:<chunks>:<total>"
//	         <key>#0 .. #n-1  -> the encoded value split into n pieces
//
// The manifest lives at the logical key itself, so every logical entry
// occupies exactly one enumerable slot id regardless of layout. A NUL byte
// can never begin JSON text, which makes manifests self-describing: a read
// can tell the layouts apart from the first byte of the slot value.
const (
	chunkSep       = "#"
	manifestPrefix = "\x00c:"
)

// manifest records how a chunked entry is laid out.
type manifest struct {
	Chunks     int // number of chunk slots
	TotalBytes int // total length of the reassembled encoded value
}

// encodeManifest renders the manifest slot value.
func encodeManifest(m manifest) string {
	return fmt.Sprintf("%s%d:%d", manifestPrefix, m.Chunks, m.TotalBytes)
}

// parseManifest recognizes a manifest slot value. The boolean return value
// reports whether raw is a manifest at all; a recognized but malformed
// manifest yields (ok=true, err!=nil) so that callers can distinguish
// "plain entry" from "corrupt chunked entry".
func parseManifest(raw string) (m manifest, ok bool, err error) {
	if !strings.HasPrefix(raw, manifestPrefix) {
		return manifest{}, false, nil
	}

	body := raw[len(manifestPrefix):]
	sep := strings.IndexByte(body, ':')
	if sep < 0 {
		return manifest{}, true, fmt.Errorf("malformed manifest %q", raw)
	}

	chunks, err := strconv.Atoi(body[:sep])
	if err != nil || chunks <= 0 {
		return manifest{}, true, fmt.Errorf("manifest records invalid chunk count %q", body[:sep])
	}
	total, err := strconv.Atoi(body[sep+1:])
	if err != nil || total < 0 {
		return manifest{}, true, fmt.Errorf("manifest records invalid total length %q", body[sep+1:])
	}

	return manifest{Chunks: chunks, TotalBytes: total}, true, nil
}

// --------------------------------------------------------------------------
// Chunk Slot Ids
// --------------------------------------------------------------------------

// chunkSlotID derives the slot id of the i-th chunk of a logical key.
// The scheme is deterministic and reversible (see chunkOwner), so
// reconstruction never depends on backend enumeration order.
func chunkSlotID(key string, i int) string {
	return key + chunkSep + strconv.Itoa(i)
}

// chunkOwner reports whether a slot id is a chunk slot and, if so, which
// logical key owns it. Logical keys cannot contain the separator (enforced
// by validation on every write), so the parse is unambiguous.
func chunkOwner(id string) (string, bool) {
	sep := strings.LastIndex(id, chunkSep)
	if sep <= 0 || sep == len(id)-1 {
		return "", false
	}
	for _, c := range id[sep+1:] {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	return id[:sep], true
}

// --------------------------------------------------------------------------
// Splitting
// --------------------------------------------------------------------------

// splitChunks cuts data into pieces of at most size bytes. The cut is
// byte-oriented: a multi-byte UTF-8 sequence may span two chunks, which is
// fine because reassembly concatenates before decoding.
func splitChunks(data []byte, size int) []string {
	chunks := make([]string, 0, (len(data)+size-1)/size)
	for start := 0; start < len(data); start += size {
		end := start + size
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, string(data[start:end]))
	}
	return chunks
}

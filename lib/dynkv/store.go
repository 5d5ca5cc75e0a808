package dynkv

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fwdslash/dynkv/lib/codec"
	"github.com/fwdslash/dynkv/lib/host"
	"github.com/fwdslash/dynkv/lib/logger"
	"github.com/fwdslash/dynkv/lib/value"
	dblogger "github.com/lni/dragonboat/v4/logger"
)

// logUnit names this component in diagnostic records.
const logUnit = "dynkv"

// --------------------------------------------------------------------------
// Options and Construction
// --------------------------------------------------------------------------

// Options configures a store during initialization.
type Options struct {
	Codec codec.ICodec // Value codec (nil = JSON)
	Sink  logger.Sink  // Diagnostic sink (nil = process default)
}

// DefaultOptions returns the default store options.
func DefaultOptions() *Options {
	return &Options{
		Codec: codec.NewJSONCodec(),
		Sink:  logger.Default(),
	}
}

type storeImpl struct {
	bag   host.PropertyBag
	codec codec.ICodec
	sink  logger.Sink
}

// New creates a store bound to the given property bag for its lifetime.
// The store does not own the bag; it delegates every physical read and
// write to it and tolerates other code mutating the same bag between its
// own operations. A nil bag yields a store whose operations all fail with
// a diagnostic instead of panicking.
func New(bag host.PropertyBag, opts *Options) IStore {
	if opts == nil {
		opts = DefaultOptions()
	}
	c := opts.Codec
	if c == nil {
		c = codec.NewJSONCodec()
	}
	sink := opts.Sink
	if sink == nil {
		sink = logger.Default()
	}
	if bag == nil {
		bag = nilBag{}
	}
	return &storeImpl{
		bag:   bag,
		codec: c,
		sink:  sink,
	}
}

// nilBag stands in for a nil bag handed to New. Every read reports an empty
// bag and every mutation fails, so a store constructed without a bag
// degrades to sentinel returns instead of panicking on first use.
type nilBag struct{}

var errNilBag = host.NewError(host.RetCInternalError, "store was created without a property bag")

func (nilBag) Kind() host.OwnerKind              { return host.OwnerWorld }
func (nilBag) Limits() host.Limits               { return host.Limits{} }
func (nilBag) GetProperty(string) (string, bool) { return "", false }
func (nilBag) SetProperty(string, string) error  { return errNilBag }
func (nilBag) DeleteProperty(string) error       { return errNilBag }
func (nilBag) PropertyIDs() []string             { return nil }
func (nilBag) TotalByteCount() int               { return 0 }
func (nilBag) ClearProperties() error            { return errNilBag }

// --------------------------------------------------------------------------
// Failure Reporting
// --------------------------------------------------------------------------

// diag emits one diagnostic record for a swallowed failure.
func (s *storeImpl) diag(op string, err *Error) {
	s.sink.LogAt(dblogger.ERROR, logger.Record{
		Unit:     logUnit,
		Location: op,
		Message:  err.Msg,
	})
}

// fail emits the single diagnostic record for a failed operation and
// returns false for use as a sentinel.
func (s *storeImpl) fail(op string, err *Error) bool {
	s.diag(op, err)
	countOp(op, false)
	return false
}

// validateKey rejects keys the slot layout cannot represent.
func validateKey(key string) *Error {
	if key == "" {
		return NewError(RetCValidation, "key must be a non-empty string")
	}
	if strings.Contains(key, chunkSep) {
		return NewError(RetCValidation, fmt.Sprintf("key %q contains the reserved separator %q", key, chunkSep))
	}
	return nil
}

// backendError wraps a bag failure into the store's error taxonomy.
func backendError(op string, err error) *Error {
	return NewError(RetCBackend, fmt.Sprintf("property bag rejected %s: %v", op, err))
}

// --------------------------------------------------------------------------
// Interface Methods (docu see dynkv.IStore)
// --------------------------------------------------------------------------

func (s *storeImpl) Get(key string) (value.Value, bool) {
	if err := validateKey(key); err != nil {
		s.fail("Get", err)
		return value.Null(), false
	}

	raw, ok := s.bag.GetProperty(key)
	if !ok {
		s.fail("Get", NewError(RetCNotFound, fmt.Sprintf("no slot exists for key %q", key)))
		return value.Null(), false
	}

	data, rerr := s.reassemble(key, raw)
	if rerr != nil {
		s.fail("Get", rerr)
		return value.Null(), false
	}

	v, err := s.codec.Decode(data)
	if err != nil {
		s.fail("Get", NewError(RetCCorruptData, fmt.Sprintf("stored text for key %q cannot be decoded: %v", key, err)))
		return value.Null(), false
	}

	countOp("Get", true)
	return v, true
}

func (s *storeImpl) Set(key string, val value.Value) bool {
	return s.put("Set", key, val)
}

// put implements Set and the write half of Push, attributing diagnostics
// and counters to op.
func (s *storeImpl) put(op, key string, val value.Value) bool {
	if err := validateKey(key); err != nil {
		return s.fail(op, err)
	}
	if !val.IsObject() {
		return s.fail(op, NewError(RetCValidation,
			fmt.Sprintf("value for key %q must be an object, got %s", key, val.Kind())))
	}

	data, err := s.codec.Encode(val)
	if err != nil {
		return s.fail(op, NewError(RetCSerialization,
			fmt.Sprintf("value for key %q cannot be encoded: %v", key, err)))
	}

	if werr := s.write(key, data); werr != nil {
		return s.fail(op, werr)
	}

	countOp(op, true)
	return true
}

func (s *storeImpl) Push(key string, val value.Value) bool {
	if err := validateKey(key); err != nil {
		return s.fail("Push", err)
	}
	if !val.IsObject() {
		return s.fail("Push", NewError(RetCValidation,
			fmt.Sprintf("value for key %q must be an object, got %s", key, val.Kind())))
	}

	// Read-merge-write without a lock: a concurrent Set/Push on the same
	// key between these two calls is lost (last write wins). An existing
	// entry that cannot be read is diagnosed and treated as empty.
	base := value.Object()
	if raw, ok := s.bag.GetProperty(key); ok {
		data, rerr := s.reassemble(key, raw)
		if rerr != nil {
			s.diag("Push", rerr)
		} else if existing, err := s.codec.Decode(data); err != nil {
			s.diag("Push", NewError(RetCCorruptData,
				fmt.Sprintf("stored text for key %q cannot be decoded: %v", key, err)))
		} else {
			base = existing
		}
	}

	return s.put("Push", key, value.Merge(base, val))
}

func (s *storeImpl) Delete(key string) bool {
	if err := validateKey(key); err != nil {
		return s.fail("Delete", err)
	}

	if _, ok := s.bag.GetProperty(key); !ok {
		return s.fail("Delete", NewError(RetCNotFound, fmt.Sprintf("no slot exists for key %q", key)))
	}

	if err := s.removeEntrySlots(key); err != nil {
		return s.fail("Delete", err)
	}

	countOp("Delete", true)
	return true
}

func (s *storeImpl) Reset() {
	if err := s.bag.ClearProperties(); err != nil {
		// not recoverable for the caller, but still diagnosed
		s.fail("Reset", backendError("clear", err))
		return
	}
	countOp("Reset", true)
}

func (s *storeImpl) HasKey(key string) bool {
	if validateKey(key) != nil {
		return false
	}
	for _, id := range s.bag.PropertyIDs() {
		if id == key {
			return true
		}
	}
	return false
}

func (s *storeImpl) Keys() []string {
	ids := s.bag.PropertyIDs()
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, isChunk := chunkOwner(id); isChunk {
			continue
		}
		keys = append(keys, id)
	}
	return keys
}

func (s *storeImpl) Bytes() int {
	return s.bag.TotalByteCount()
}

// --------------------------------------------------------------------------
// Physical Layout Helpers
// --------------------------------------------------------------------------

// write stores the encoded value under key, chunking when it exceeds the
// bag's per-slot limit. The write is all-or-nothing from the caller's
// point of view: on a backend failure partway through a chunk sequence the
// partially written slots are removed before returning. When the previous
// layout of the entry was plain it survives such a failure untouched; when
// it was chunked its slots have already been overwritten, so the whole
// entry is removed rather than left half-mixed.
func (s *storeImpl) write(key string, data []byte) *Error {
	prevChunks := s.currentChunkCount(key)
	maxSlot := s.bag.Limits().MaxSlotBytes

	// plain layout; a rejected write leaves the bag unchanged
	if maxSlot <= 0 || len(data) <= maxSlot {
		if err := s.bag.SetProperty(key, string(data)); err != nil {
			return backendError("write", err)
		}
		s.dropChunkRange(key, 0, prevChunks)
		return nil
	}

	// chunked layout: chunks first, manifest last
	chunks := splitChunks(data, maxSlot)
	for i, chunk := range chunks {
		if err := s.bag.SetProperty(chunkSlotID(key, i), chunk); err != nil {
			s.rollbackChunks(key, i, prevChunks)
			return backendError(fmt.Sprintf("write of chunk %d/%d", i, len(chunks)), err)
		}
	}
	if err := s.bag.SetProperty(key, encodeManifest(manifest{Chunks: len(chunks), TotalBytes: len(data)})); err != nil {
		s.rollbackChunks(key, len(chunks), prevChunks)
		return backendError("manifest write", err)
	}
	s.dropChunkRange(key, len(chunks), prevChunks)

	countChunkedWrite(len(chunks))
	return nil
}

// rollbackChunks undoes a failed chunk sequence after written slots were
// stored. If the previous layout was chunked its chunk slots have been
// partially overwritten, so the entire entry is removed; a previous plain
// (or absent) entry is untouched and only the new chunk slots are dropped.
func (s *storeImpl) rollbackChunks(key string, written, prevChunks int) {
	if prevChunks > 0 {
		_ = s.removeEntrySlots(key)
		return
	}
	s.dropChunkRange(key, 0, written)
}

// reassemble turns a slot value into the full encoded value, following the
// manifest when the entry is chunked.
func (s *storeImpl) reassemble(key, raw string) ([]byte, *Error) {
	m, isManifest, err := parseManifest(raw)
	if !isManifest {
		return []byte(raw), nil
	}
	if err != nil {
		return nil, NewError(RetCCorruptData, fmt.Sprintf("key %q: %v", key, err))
	}

	var buf bytes.Buffer
	buf.Grow(m.TotalBytes)
	for i := 0; i < m.Chunks; i++ {
		chunk, ok := s.bag.GetProperty(chunkSlotID(key, i))
		if !ok {
			return nil, NewError(RetCCorruptData,
				fmt.Sprintf("key %q: chunk %d of %d is missing", key, i, m.Chunks))
		}
		buf.WriteString(chunk)
	}
	if buf.Len() != m.TotalBytes {
		return nil, NewError(RetCCorruptData,
			fmt.Sprintf("key %q: reassembled %d bytes, manifest records %d", key, buf.Len(), m.TotalBytes))
	}
	return buf.Bytes(), nil
}

// currentChunkCount reads the chunk count of the entry currently stored
// under key, or 0 for plain and absent entries.
func (s *storeImpl) currentChunkCount(key string) int {
	raw, ok := s.bag.GetProperty(key)
	if !ok {
		return 0
	}
	m, isManifest, err := parseManifest(raw)
	if !isManifest || err != nil {
		return 0
	}
	return m.Chunks
}

// dropChunkRange deletes the chunk slots [from, to) of key. Used to clear
// stale chunks left over from a previous, wider layout of the same entry.
func (s *storeImpl) dropChunkRange(key string, from, to int) {
	for i := from; i < to; i++ {
		_ = s.bag.DeleteProperty(chunkSlotID(key, i))
	}
}

// removeEntrySlots deletes the entry slot and all chunk slots of key.
// All deletions are attempted; the first backend failure is reported.
func (s *storeImpl) removeEntrySlots(key string) *Error {
	var firstErr *Error
	for _, id := range s.bag.PropertyIDs() {
		owner, isChunk := chunkOwner(id)
		if id != key && (!isChunk || owner != key) {
			continue
		}
		if err := s.bag.DeleteProperty(id); err != nil && firstErr == nil {
			firstErr = backendError(fmt.Sprintf("delete of slot %q", id), err)
		}
	}
	return firstErr
}

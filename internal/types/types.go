// Package types holds the small set of identifier aliases shared across
// the storage core's packages — generalized from minidb's pkg/types
// (PageID/TxnID) down to the two identifiers this spec actually needs: a
// dense in-file page index and a buffer pool handle. The ARIES-era LSN and
// MVCC command-id concepts from the teacher do not survive here: this
// spec's WAL has no undo chain and its tuples carry only a visibility
// byte, not xmin/xmax.
package types

// PageIndex is the dense, zero-based position of a Page within a File.
type PageIndex uint32

// Handle is the synthetic 32-bit key a BufferPool uses to address one
// buffered page, derived by CRC-32 over (catalog_id, file_id, page_id).
type Handle uint32

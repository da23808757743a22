// Package store provides the key-value persistence the pipeline stages share.
//
// Keys are slash-separated relative paths such as "241/202-35-652.json".
// A key whose value exists is a completed artifact; the fetch stage relies on
// that to resume interrupted runs.
//
// Two implementations are provided:
//   - FileStore maps keys to files under a root directory and writes every
//     value through a temporary file and rename, so a reader never observes a
//     truncated artifact
//   - MemoryStore keeps values in a map and supports error injection for tests
//
// Usage:
//
//	results, err := store.NewFileStore("results")
//	if err != nil {
//	    return err
//	}
//
//	ok, err := results.Exists("241/202-35-652.json")
//	if err == nil && !ok {
//	    err = results.Put("241/202-35-652.json", payload)
//	}
package store

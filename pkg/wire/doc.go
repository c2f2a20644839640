// Package wire describes the persisted schema document exchanged with
// storage and renderers: an OpenAPI-shaped envelope with a single object
// schema under components.schemas and the editor row layout carried in the
// x-layout extension. It also defines the Source/Document wrappers used to
// load those documents from files, fs.FS entries or URLs.
package wire

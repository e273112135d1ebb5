// Package assets serves the files a browser needs to join a canvas session:
// the bootstrap page, its script and stylesheet, and the images and audio
// the painter loads by URL.
//
// A Responder answers GET and HEAD requests from a Source. FSSource reads a
// local directory or any fs.FS; S3Source reads objects from a bucket.
//
//	resp := assets.NewResponder(assets.DirSource("resources"), logger)
//	srv.SetAssets(resp)
//
// Only file types in the allowlist are served. Anything else gets 501, so a
// misplaced file in the resource directory is never exposed by accident.
package assets

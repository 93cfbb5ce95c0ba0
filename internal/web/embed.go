package web

import (
	"embed"
	"io/fs"
	"net/http"
)

var (
	//go:embed static
	embeddedStatic embed.FS

	//go:embed templates
	embeddedViews embed.FS
)

// mustSub roots an embedded tree at dir. The directories are fixed at build time,
// so a failure here is a programming error.
func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}

	return sub
}

// ViewsFS serves the page templates, rooted so names read like "site/home".
func ViewsFS() http.FileSystem {
	return http.FS(mustSub(embeddedViews, "templates"))
}

// StaticFS serves the stylesheets and scripts under /static.
func StaticFS() http.FileSystem {
	return http.FS(mustSub(embeddedStatic, "static"))
}

// Package web bundles the console templates and static assets.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html static/*
var assets embed.FS

// Templates is the root for the html view engine.
func Templates() http.FileSystem { return sub("templates") }

// Static is served under /static.
func Static() http.FileSystem { return sub("static") }

func sub(dir string) http.FileSystem {
	f, err := fs.Sub(assets, dir)
	if err != nil {
		panic(err)
	}
	return http.FS(f)
}

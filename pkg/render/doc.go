// Package render turns TeX source into MathML.
//
// A [Renderer] takes a validated [TeX] value and returns an [Outcome], which
// is either a [*Success] carrying MathML or a [*Failure] describing why no
// MathML could be produced. Renderers never return Go errors for rendering
// problems: the caller decides how a failure is shaped into output.
//
// # Backends
//
//   - [Client] delegates to a remote rendering service over HTTP
//   - [Local] renders in-process with goldmark and treeblood
//
// Either backend can be wrapped with [Cached] to keep successful renderings
// in a [cache.Cache]:
//
//	client := render.NewClient(render.ClientOptions{Endpoint: "http://localhost:10044"})
//	r := render.Cached(client, fileCache, cache.NewDefaultKeyer(), cache.TTLRender)
//
//	tex, err := render.TeXFromValue(datamodel.StringValue(`\sin x`))
//	if err != nil {
//	    return err // INVALID_ARGUMENT
//	}
//	switch o := r.Render(ctx, tex).(type) {
//	case *render.Success:
//	    fmt.Println(o.MathML)
//	case *render.Failure:
//	    fmt.Println(o.Class, o.Message)
//	}
package render

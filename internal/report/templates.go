package report

// pageTemplate is the Go html/template for the report page.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; max-width: 1100px; margin: 2rem auto; padding: 0 1rem; color: #1f2328; line-height: 1.5; }
    table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
    th, td { border: 1px solid #d0d7de; padding: .35rem .6rem; }
    th { background: #f6f8fa; }
    pre { padding: .8rem; overflow-x: auto; border-radius: 6px; }
    code { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; font-size: 85%; }
    footer { margin-top: 3rem; color: #656d76; font-size: 85%; }
  </style>
</head>
<body>
  <article>
    {{.Content}}
  </article>
  <footer>Generated {{.Generated}}</footer>
</body>
</html>`

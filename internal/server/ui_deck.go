package server

import (
	"fmt"
	"net/http"
	"strings"
)

const deckHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{deck_name}}</title>
  <style>
    :root { --line: #d7e6dd; --accent: #1f5f44; --muted: #5b6b62; }
    body { margin: 0; font-family: system-ui, sans-serif; color: #1f2a24; }
    section[data-section] { min-height: 100vh; padding: 48px; box-sizing: border-box; }
    .funnel { display: flex; gap: 16px; }
    .funnel-step { padding: 18px 22px; border: 1px solid var(--line); border-radius: 10px; cursor: default; }
    .info-box { display: none; position: fixed; max-width: 560px; padding: 12px 14px;
      border: 1px solid var(--line); border-radius: 8px; background: #f8fcfa;
      box-shadow: 0 6px 18px rgba(26,40,34,.15); z-index: 2600; }
    .info-close { float: right; border: 0; background: none; cursor: pointer; font-size: 16px; }
    .demo-card { display: inline-block; padding: 20px; margin: 8px; border: 1px solid var(--line);
      border-radius: 10px; cursor: pointer; }
    .demo-panel { display: none; position: fixed; inset: 5vh 5vw; background: #fff;
      border: 1px solid var(--line); border-radius: 12px; z-index: 2700; }
    .demo-panel.open { display: block; }
    .demo-panel [data-embed-host], .demo-panel [data-embed-host] iframe { width: 100%; height: 100%; border: 0; }
    .demo-close { position: absolute; top: 10px; right: 14px; z-index: 1; border: 0; background: none;
      font-size: 20px; cursor: pointer; }
  </style>
</head>
<body>
{{sections}}
<script src="/ui/bridge.js"></script>
</body>
</html>
`

const funnelSectionHTML = `  <section data-section="funnel">
    <h1>{{deck_name}}</h1>
    <div class="funnel">
      <div class="funnel-step funnel-step-1">Reach</div>
      <div class="funnel-step funnel-step-2">Engage</div>
      <div class="funnel-step funnel-step-3">Evaluate</div>
      <div class="funnel-step funnel-step-4">Adopt</div>
      <div class="funnel-step funnel-step-5">Expand</div>
    </div>
    <div class="info-box" id="info-0" data-tooltip><button class="info-close" aria-label="Close">&times;</button>Top of funnel: awareness and first contact.</div>
    <div class="info-box" id="info-1" data-tooltip><button class="info-close" aria-label="Close">&times;</button>Hands-on engagement with the product.</div>
    <div class="info-box" id="info-2" data-tooltip><button class="info-close" aria-label="Close">&times;</button>Side-by-side evaluation against the incumbent.</div>
    <div class="info-box" id="info-3" data-tooltip><button class="info-close" aria-label="Close">&times;</button>Rollout across the first team.</div>
    <div class="info-box" id="info-4" data-tooltip><button class="info-close" aria-label="Close">&times;</button>Expansion to neighboring teams.</div>
  </section>
`

func (a *app) deckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(a.renderDeck()))
}

func (a *app) renderDeck() string {
	var sections strings.Builder
	sections.WriteString(renderTemplate(funnelSectionHTML, map[string]string{
		"deck_name": a.cfg.Deck.Name,
	}))
	if len(a.cfg.Demos) > 0 {
		sections.WriteString(a.renderDemoSection())
	}
	return renderTemplate(deckHTML, map[string]string{
		"deck_name": a.cfg.Deck.Name,
		"sections":  sections.String(),
	})
}

func (a *app) renderDemoSection() string {
	name := a.cfg.Deck.DemoSection
	if name == "" {
		name = "demos"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  <section data-section=%q>\n    <h2>Agent demos</h2>\n", name)
	for _, d := range a.cfg.Demos {
		fmt.Fprintf(&b, "    <div class=\"demo-card\" id=\"demo-trigger-%s\">%s</div>\n", d.ID, d.ID)
	}
	for _, d := range a.cfg.Demos {
		fmt.Fprintf(&b, `    <div class="demo-panel" id=%q aria-hidden="true">
      <button class="demo-close" aria-label="Close">&times;</button>
      <div data-embed-host><iframe loading="lazy" data-src=%q title=%q></iframe></div>
    </div>
`, d.PanelID, d.EmbedURL, d.ID)
	}
	b.WriteString("  </section>\n")
	return b.String()
}

func renderTemplate(template string, vars map[string]string) string {
	result := template
	for k, v := range vars {
		result = strings.ReplaceAll(result, "{{"+k+"}}", v)
	}
	return result
}

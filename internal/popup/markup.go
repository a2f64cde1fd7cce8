package popup

import (
	"bytes"
	"html/template"

	"github.com/f3rmion/subkana/internal/subkana"
)

var funcs = template.FuncMap{
	"levelColor": func(l subkana.Level) template.CSS { return template.CSS(l.Color()) },
	"badgeText":  func(l subkana.Level) template.CSS { return template.CSS(l.BadgeTextColor()) },
	"has":        subkana.HasValue,
	"posName":    subkana.PartOfSpeechName,
}

var loadingTemplate = template.Must(template.New("loading").Parse(
	`<div class="jp-loading"><div class="jp-spinner"></div><span>Analyzing...</span></div>`))

var errorTemplate = template.Must(template.New("error").Parse(
	`<div class="jp-error"><strong>Analysis failed</strong><p>{{.}}</p></div>`))

var analysisTemplate = template.Must(template.New("analysis").Funcs(funcs).Parse(`
<div class="jp-analysis">
  <section class="jp-sentence">
    <h4>Original</h4>
    <p>{{.Sentence}}</p>
  </section>
{{- if .Patterns}}
  <section class="jp-grammar">
    <h4>Grammar</h4>
  {{- range .Patterns}}
    <div class="jp-grammar-item" data-level="{{.Level}}" style="border-left: 3px solid {{levelColor .Level}}">
      <div class="jp-grammar-head">
        <span class="jp-badge" style="background: {{levelColor .Level}}; color: {{badgeText .Level}}">{{.Level}}</span>
        <span class="jp-level-desc">{{.Level.Description}}</span>
        <span class="jp-grammar-name">{{.Name}}</span>
      </div>
      <div class="jp-grammar-meaning">{{.Meaning}}</div>
      {{- if .Structure}}
      <div class="jp-grammar-structure">Matched: {{range $i, $s := .Structure}}{{if $i}} + {{end}}<span>{{$s}}</span>{{end}}</div>
      {{- end}}
    </div>
  {{- end}}
  </section>
{{- end}}
{{- if .Tokens}}
  <section class="jp-vocabulary">
    <h4>Vocabulary</h4>
  {{- range .Tokens}}
    <div class="jp-token">
      <div class="jp-token-head">
        <span class="jp-surface">{{.Surface}}</span>
        {{- if has .Reading}}
        <span class="jp-reading">{{.Reading}}</span>
        {{- end}}
        {{- if .Level}}
        <span class="jp-badge" style="background: {{levelColor .Level}}; color: {{badgeText .Level}}">{{.Level}}</span>
        {{- end}}
      </div>
      {{- if has .Meaning}}
      <div class="jp-token-meaning">{{.Meaning}}</div>
      {{- end}}
      <div class="jp-token-details">
        {{- if .PartOfSpeech}}
        <span class="jp-pos">{{posName .PartOfSpeech}}</span>
        {{- end}}
        {{- if and (has .Lemma) (ne .Lemma .Surface)}}
        <span class="jp-lemma">Base form: {{.Lemma}}</span>
        {{- end}}
        {{- if has .ConjugationForm}}
        <span class="jp-conj">{{.ConjugationForm}}</span>
        {{- end}}
        {{- if has .Romanization}}
        <span class="jp-romaji">{{.Romanization}}</span>
        {{- end}}
      </div>
    </div>
  {{- end}}
  </section>
{{- end}}
{{- if .Empty}}
  <section class="jp-empty">
    <p>No grammar or vocabulary matches the current level filters.</p>
    <p>Check the level filter settings.</p>
  </section>
{{- end}}
</div>`))

// analysisView is the data behind analysisTemplate.
type analysisView struct {
	Sentence template.HTML // Highlighted and already escaped
	Patterns []subkana.GrammarPattern
	Tokens   []subkana.Token
	Empty    bool
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

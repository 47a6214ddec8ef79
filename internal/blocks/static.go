package blocks

import (
	"context"
	"html/template"
	"strconv"

	"sitepages/internal/domain"
)

// ── Hero ────────────────────────────────────────────────────

type heroView struct {
	Title, Subtitle  string
	CTAText, CTAHref string
	CTAVariant       string
	ShowCTA          bool
}

func heroDescriptor() Descriptor {
	return Descriptor{
		Type:  domain.BlockTypeHero,
		Label: "Hero",
		Default: func() domain.BlockData {
			return domain.BlockData{"title": "Heading", "subtitle": "", "cta_text": "", "cta_href": ""}
		},
		Fields: []Field{
			textField("title", "Title"),
			textareaField("subtitle", "Subtitle"),
			textField("cta_text", "Button text"),
			textField("cta_href", "Button link"),
			selectField("cta_variant", "Button style", "primary", "secondary", "outline"),
		},
		Render: renderHero,
	}
}

func renderHero(_ context.Context, data domain.BlockData) (template.HTML, error) {
	p := Payload(data)
	v := heroView{
		Title:      p.String("title", ""),
		Subtitle:   p.String("subtitle", ""),
		CTAText:    p.Text("cta_text", ""),
		CTAHref:    p.Text("cta_href", ""),
		CTAVariant: p.Text("cta_variant", "primary"),
	}
	v.ShowCTA = v.CTAText != "" && v.CTAHref != ""
	return execute("hero", v)
}

// ── Text ────────────────────────────────────────────────────

type textView struct {
	Title    string
	Content  template.HTML
	Centered bool
	MaxWidth string
	BgColor  string
}

func textDescriptor() Descriptor {
	return Descriptor{
		Type:  domain.BlockTypeText,
		Label: "Text",
		Default: func() domain.BlockData {
			return domain.BlockData{"title": "", "content": "", "centered": false, "max_width": "4xl"}
		},
		Fields: []Field{
			textField("title", "Title"),
			richField("content", "Content"),
			selectField("format", "Format", "html", "markdown"),
			boolField("centered", "Centered"),
			selectField("max_width", "Max width", "2xl", "3xl", "4xl", "5xl", "6xl", "full"),
			selectField("bg_color", "Background", "white", "muted", "primary"),
		},
		Render: renderText,
	}
}

func renderText(_ context.Context, data domain.BlockData) (template.HTML, error) {
	p := Payload(data)
	content := p.String("content", "")
	v := textView{
		Title:    p.String("title", ""),
		Centered: p.Bool("centered", false),
		MaxWidth: p.Text("max_width", "4xl"),
		BgColor:  p.Text("bg_color", ""),
	}
	if p.Text("format", "html") == "markdown" {
		v.Content = Markdown(content)
	} else {
		v.Content = SafeHTML(content)
	}
	return execute("text", v)
}

// ── Features ────────────────────────────────────────────────

type featureView struct {
	Icon, Title, Description string
}

type featuresView struct {
	Title, Subtitle string
	Columns         int
	Features        []featureView
}

func featuresDescriptor() Descriptor {
	return Descriptor{
		Type:  domain.BlockTypeFeatures,
		Label: "Features",
		Default: func() domain.BlockData {
			return domain.BlockData{"title": "", "subtitle": "", "features": []any{}, "columns": 4}
		},
		Fields: []Field{
			textField("title", "Title"),
			textareaField("subtitle", "Subtitle"),
			selectField("columns", "Columns", "2", "3", "4"),
			listField("features", "Features",
				textField("icon", "Icon"),
				textField("title", "Title"),
				textareaField("description", "Description"),
			),
		},
		Render: renderFeatures,
	}
}

func renderFeatures(_ context.Context, data domain.BlockData) (template.HTML, error) {
	p := Payload(data)
	v := featuresView{
		Title:    p.String("title", ""),
		Subtitle: p.String("subtitle", ""),
		Columns:  clampColumns(p.Int("columns", 4), 4),
	}
	for _, f := range p.List("features") {
		v.Features = append(v.Features, featureView{
			Icon:        f.Text("icon", ""),
			Title:       f.String("title", ""),
			Description: f.String("description", ""),
		})
	}
	return execute("features", v)
}

// ── Image + text ────────────────────────────────────────────

type statView struct {
	Value, Label string
}

type imageTextView struct {
	Title    string
	Content  template.HTML
	ImageURL string
	ImageAlt string
	Badge    string
	Reverse  bool
	Stats    []statView
}

func imageTextDescriptor() Descriptor {
	return Descriptor{
		Type:  domain.BlockTypeImageText,
		Label: "Image and text",
		Default: func() domain.BlockData {
			return domain.BlockData{"title": "", "content": "", "image_url": "", "reverse": false, "stats": []any{}}
		},
		Fields: []Field{
			textField("title", "Title"),
			richField("content", "Content"),
			textField("image_url", "Image URL"),
			textField("image_alt", "Image description"),
			textField("badge", "Badge"),
			boolField("reverse", "Image on the right"),
			listField("stats", "Figures",
				textField("value", "Value"),
				textField("label", "Label"),
			),
		},
		Render: renderImageText,
	}
}

func renderImageText(_ context.Context, data domain.BlockData) (template.HTML, error) {
	p := Payload(data)
	v := imageTextView{
		Title:    p.String("title", ""),
		Content:  SafeHTML(p.String("content", "")),
		ImageURL: p.Text("image_url", ""),
		Badge:    p.Text("badge", ""),
		Reverse:  p.Bool("reverse", false),
	}
	v.ImageAlt = p.Text("image_alt", v.Title)
	for _, s := range p.List("stats") {
		v.Stats = append(v.Stats, statView{Value: s.String("value", ""), Label: s.String("label", "")})
	}
	return execute("image_text", v)
}

// ── Timeline ────────────────────────────────────────────────

type milestoneView struct {
	Year, Title, Description string
}

type timelineView struct {
	Title      string
	Milestones []milestoneView
}

func timelineDescriptor() Descriptor {
	return Descriptor{
		Type:  domain.BlockTypeTimeline,
		Label: "Timeline",
		Default: func() domain.BlockData {
			return domain.BlockData{"title": "", "milestones": []any{}}
		},
		Fields: []Field{
			textField("title", "Title"),
			listField("milestones", "Milestones",
				textField("year", "Year"),
				textField("title", "Title"),
				textareaField("description", "Description"),
			),
		},
		Render: renderTimeline,
	}
}

func renderTimeline(_ context.Context, data domain.BlockData) (template.HTML, error) {
	p := Payload(data)
	v := timelineView{Title: p.String("title", "")}
	for _, m := range p.List("milestones") {
		v.Milestones = append(v.Milestones, milestoneView{
			Year:        m.String("year", ""),
			Title:       m.String("title", ""),
			Description: m.String("description", ""),
		})
	}
	return execute("timeline", v)
}

// ── Call to action ──────────────────────────────────────────

type ctaView struct {
	Title, Subtitle  string
	CTAText, CTAHref string
	ShowCTA          bool
}

func ctaDescriptor() Descriptor {
	return Descriptor{
		Type:  domain.BlockTypeCTA,
		Label: "Call to action",
		Default: func() domain.BlockData {
			return domain.BlockData{"title": "", "subtitle": "", "cta_text": "", "cta_href": ""}
		},
		Fields: []Field{
			textField("title", "Title"),
			textareaField("subtitle", "Subtitle"),
			textField("cta_text", "Button text"),
			textField("cta_href", "Button link"),
		},
		Render: renderCTA,
	}
}

func renderCTA(_ context.Context, data domain.BlockData) (template.HTML, error) {
	p := Payload(data)
	v := ctaView{
		Title:    p.String("title", ""),
		Subtitle: p.String("subtitle", ""),
		CTAText:  p.Text("cta_text", ""),
		CTAHref:  p.Text("cta_href", ""),
	}
	v.ShowCTA = v.CTAText != "" && v.CTAHref != ""
	return execute("cta", v)
}

// ── Numbered cards ──────────────────────────────────────────

type cardView struct {
	Number             int
	Title, Description string
}

type numberedCardsView struct {
	Title   string
	Columns int
	Cards   []cardView
}

func numberedCardsDescriptor() Descriptor {
	return Descriptor{
		Type:  domain.BlockTypeNumberedCards,
		Label: "Numbered cards",
		Default: func() domain.BlockData {
			return domain.BlockData{"title": "", "cards": []any{}, "columns": 3}
		},
		Fields: []Field{
			textField("title", "Title"),
			selectField("columns", "Columns", "2", "3", "4"),
			listField("cards", "Cards",
				textField("title", "Title"),
				textareaField("description", "Description"),
			),
		},
		Render: renderNumberedCards,
	}
}

func renderNumberedCards(_ context.Context, data domain.BlockData) (template.HTML, error) {
	p := Payload(data)
	v := numberedCardsView{
		Title:   p.String("title", ""),
		Columns: clampColumns(p.Int("columns", 3), 3),
	}
	for i, c := range p.List("cards") {
		v.Cards = append(v.Cards, cardView{
			Number:      i + 1,
			Title:       c.String("title", ""),
			Description: c.String("description", ""),
		})
	}
	return execute("numbered_cards", v)
}

// ── Checklist ───────────────────────────────────────────────

type sidebarView struct {
	Title            string
	Content          template.HTML
	CTAText, CTAHref string
	ShowCTA          bool
}

type checklistView struct {
	Title, Subtitle string
	Items           []string
	Sidebar         *sidebarView
}

func checklistDescriptor() Descriptor {
	return Descriptor{
		Type:  domain.BlockTypeChecklist,
		Label: "Checklist",
		Default: func() domain.BlockData {
			return domain.BlockData{"title": "", "subtitle": "", "items": []any{}, "sidebar": nil}
		},
		Fields: []Field{
			textField("title", "Title"),
			textareaField("subtitle", "Subtitle"),
			listField("items", "Items", textField("", "Item")),
			objectField("sidebar", "Sidebar",
				textField("title", "Title"),
				richField("content", "Content"),
				textField("cta_text", "Button text"),
				textField("cta_href", "Button link"),
			),
		},
		Render: renderChecklist,
	}
}

func renderChecklist(_ context.Context, data domain.BlockData) (template.HTML, error) {
	p := Payload(data)
	v := checklistView{
		Title:    p.String("title", ""),
		Subtitle: p.String("subtitle", ""),
		Items:    p.Strings("items"),
	}
	if sb, ok := p.Map("sidebar"); ok {
		s := &sidebarView{
			Title:   sb.String("title", ""),
			Content: SafeHTML(sb.String("content", "")),
			CTAText: sb.Text("cta_text", ""),
			CTAHref: sb.Text("cta_href", ""),
		}
		s.ShowCTA = s.CTAText != "" && s.CTAHref != ""
		v.Sidebar = s
	}
	return execute("checklist", v)
}

// ── Steps ───────────────────────────────────────────────────

type stepView struct {
	Number             string
	Title, Description string
}

type stepsView struct {
	Title string
	Steps []stepView
}

func stepsDescriptor() Descriptor {
	return Descriptor{
		Type:  domain.BlockTypeSteps,
		Label: "Steps",
		Default: func() domain.BlockData {
			return domain.BlockData{"title": "", "steps": []any{}}
		},
		Fields: []Field{
			textField("title", "Title"),
			listField("steps", "Steps",
				textField("number", "Number"),
				textField("title", "Title"),
				textareaField("description", "Description"),
			),
		},
		Render: renderSteps,
	}
}

func renderSteps(_ context.Context, data domain.BlockData) (template.HTML, error) {
	p := Payload(data)
	v := stepsView{Title: p.String("title", "")}
	for i, s := range p.List("steps") {
		v.Steps = append(v.Steps, stepView{
			Number:      s.Text("number", strconv.Itoa(i+1)),
			Title:       s.String("title", ""),
			Description: s.String("description", ""),
		})
	}
	return execute("steps", v)
}

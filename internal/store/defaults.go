package store

import "linkflowd/internal/model"

// DefaultListID is seeded on first run and cannot be deleted.
const DefaultListID = "list_today"

func defaultLists() []model.List {
	return []model.List{
		{ID: DefaultListID, Name: "All Tasks", Icon: "📋"},
		{ID: "list_work", Name: "Work", Icon: "💼"},
		{ID: "list_life", Name: "Life", Icon: "🏡"},
	}
}

func defaultSchemes() []model.Scheme {
	return []model.Scheme{
		{
			ID: "scheme_wemeet", Name: "Meeting", Icon: "📹",
			Template: "wemeet://inmeeting?code={param}",
			Kind:     model.SchemeURL, ParamType: model.ParamNumber,
		},
		{
			ID: "scheme_mail", Name: "Mail", Icon: "✉️",
			Template: "mailto:{param}?subject={param}",
			Kind:     model.SchemeURL, ParamType: model.ParamString,
		},
		{
			ID: "scheme_maps", Name: "Maps", Icon: "🗺️",
			Template: "iosamap://path?sourceApplication=linkflow&dname={param}",
			Kind:     model.SchemeURL, ParamType: model.ParamString,
		},
		{
			ID: "scheme_tel", Name: "Phone", Icon: "📞",
			Template: "tel://{param}",
			Kind:     model.SchemeURL, ParamType: model.ParamNumber,
		},
	}
}

package php

import (
	"bytes"
	"embed"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed template/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("php").
		Option("missingkey=error").
		Funcs(sprig.TxtFuncMap()).
		ParseFS(templateFS, "template/*.tmpl"),
)

// fileData is the input of the class and interface templates.
type fileData struct {
	Namespace    string
	Name         string
	NodeTypeName string
	Implements   []string
	Public       []*accessor
	Internal     []*accessor
}

// accessor is the input of the method and signature templates.
type accessor struct {
	Property      string
	Method        string
	ReturnType    string
	Annotation    string
	TypeCheck     string
	DefaultReturn string
}

func execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

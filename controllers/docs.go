package controllers

import (
	"net/http"

	"go-storefront/utils"
)

// DocsController serves the OpenAPI document.
type DocsController struct {
	doc []byte
}

func NewDocsController() (*DocsController, error) {
	doc, err := utils.APIDocJSON()
	if err != nil {
		return nil, err
	}
	return &DocsController{doc: doc}, nil
}

func (dc *DocsController) GetDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(dc.doc)
}

package fvdf

type DataSource struct {
	Provider   string `groups:"internal"`
	Dataset    string `groups:"internal"`
	Identifier string `groups:"internal"`
}

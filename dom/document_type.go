package dom

// DocumentType is https://dom.whatwg.org/#documenttype
type DocumentType struct {
	Name           string
	PublicID       string
	SystemID       string
	InternalSubset string
}

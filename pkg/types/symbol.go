package types

// SymbolKind identifies the category of a documented API symbol
type SymbolKind string

const (
	KindClass    SymbolKind = "class"
	KindProperty SymbolKind = "property"
	KindMethod   SymbolKind = "method"
	KindFunction SymbolKind = "function"
	KindConstant SymbolKind = "constant"
)

// Valid reports whether the kind is one of the five documented categories
func (k SymbolKind) Valid() bool {
	switch k {
	case KindClass, KindProperty, KindMethod, KindFunction, KindConstant:
		return true
	default:
		return false
	}
}

// Member reports whether the kind only exists inside a class body
func (k SymbolKind) Member() bool {
	return k == KindProperty || k == KindMethod
}

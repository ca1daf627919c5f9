// Package relevance decides whether a prompt is about the ERP at all.
package relevance

import "strings"

// RefusalMessage is the answer given to prompts outside the ERP domain.
const RefusalMessage = "Lo siento, solo puedo responder preguntas relacionadas con ERPNext. ¿En qué más puedo ayudarte?"

// DefaultKeywords is the allow-list used when none is configured.
var DefaultKeywords = []string{
	"erpnext", "cliente", "factura", "venta", "compra", "inventario",
	"proveedor", "artículo", "pedido", "cotización", "transacción", "hola",
	"rotacion", "ultima", "informacion", "costo", "precio", "ultimo", "alto", "ayuda",
	"erp", "sistema", "datos maestros", "producto", "item",
}

// Gate is a keyword allow-list. A prompt is related when any keyword is a
// substring of its lower-cased text.
type Gate struct {
	keywords []string
}

// NewGate normalizes keywords. A list that normalizes to nothing selects
// DefaultKeywords.
func NewGate(keywords []string) *Gate {
	seen := make(map[string]struct{}, len(keywords))
	norm := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		norm = append(norm, k)
	}
	if len(norm) == 0 {
		return NewGate(DefaultKeywords)
	}
	return &Gate{keywords: norm}
}

func (g *Gate) IsRelated(prompt string) bool {
	p := strings.ToLower(prompt)
	for _, k := range g.keywords {
		if strings.Contains(p, k) {
			return true
		}
	}
	return false
}

// Keywords returns a copy of the normalized allow-list.
func (g *Gate) Keywords() []string {
	return append([]string(nil), g.keywords...)
}

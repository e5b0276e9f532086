package presenter

import (
	"fmt"
	"io"

	"github.com/ps-vitor/zillow-scraper/backend/internal/domain"
)

const (
	Divider = "------------------------------"

	// NoResultsMessage is printed when a page parses but lists nothing.
	NoResultsMessage = "No se encontraron propiedades en la respuesta. Verifica los filtros de la URL."
)

// Print writes one block per property, in order.
func Print(w io.Writer, properties []domain.Property) error {
	for _, p := range properties {
		if _, err := fmt.Fprintf(w, "%s\nNombre: %s\nPrecio: %v\n", Divider, p.Name, p.Price); err != nil {
			return err
		}
		if p.PropertyType != "" {
			if _, err := fmt.Fprintf(w, "Tipo: %s\n", p.PropertyType); err != nil {
				return err
			}
		}
		if p.DetailURL != nil && *p.DetailURL != "" {
			if _, err := fmt.Fprintf(w, "URL: %s\n", *p.DetailURL); err != nil {
				return err
			}
		}
	}
	return nil
}

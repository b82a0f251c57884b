package inventory

import (
	"fmt"
	"time"
)

// DocumentCode arma el código legible de un documento: <PREFIJO><AAAAMMDD><NNN>.
// seq es el consecutivo del día (1 = primer documento), con relleno a 3 dígitos.
// La fecha se toma en la zona horaria de day; el llamador debe pasarla ya convertida.
func DocumentCode(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s%s%03d", prefix, day.Format("20060102"), seq)
}

// BusinessDay trunca t al inicio del día calendario en loc.
func BusinessDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

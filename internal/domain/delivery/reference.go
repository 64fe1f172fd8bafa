// Package delivery: consecutivo de remisiones (delivery notes).
// Formato: "DN" + fecha yyyyMMdd + secuencia de 6 dígitos con ceros a la izquierda,
// ej. DN20240115000007.
package delivery

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Prefix prefijo fijo de toda remisión.
	Prefix = "DN"
	// SequenceWidth dígitos de la secuencia al final del número.
	SequenceWidth = 6
	// MaxSequence mayor secuencia representable con SequenceWidth dígitos.
	MaxSequence = 999999

	dateLayout = "20060102"
)

// ErrSequenceExhausted se devuelve cuando la secuencia supera los 6 dígitos.
var ErrSequenceExhausted = errors.New("delivery: secuencia de remisiones agotada")

// DayPrefix devuelve "DN<yyyyMMdd>" para la fecha dada.
func DayPrefix(date time.Time) string {
	return Prefix + date.Format(dateLayout)
}

// Format arma el número completo para una fecha y una secuencia.
func Format(date time.Time, seq int64) (string, error) {
	if seq < 1 || seq > MaxSequence {
		return "", fmt.Errorf("%w: %d", ErrSequenceExhausted, seq)
	}
	return fmt.Sprintf("%s%0*d", DayPrefix(date), SequenceWidth, seq), nil
}

// FirstOfDay valor por defecto cuando aún no existen remisiones: DN<date>000001.
func FirstOfDay(date time.Time) string {
	return DayPrefix(date) + strings.Repeat("0", SequenceWidth-1) + "1"
}

// NextReferenceNumber calcula el siguiente número a partir del mayor sufijo existente.
// max == nil significa que no hay remisiones: devuelve ("", false) y el llamador usa FirstOfDay.
// Determinista y sin efectos secundarios.
func NextReferenceNumber(date time.Time, max *int64) (string, bool, error) {
	if max == nil {
		return "", false, nil
	}
	ref, err := Format(date, *max+1)
	if err != nil {
		return "", false, err
	}
	return ref, true, nil
}

// Resolve combina NextReferenceNumber con el valor por defecto del día.
func Resolve(date time.Time, max *int64) (string, error) {
	ref, ok, err := NextReferenceNumber(date, max)
	if err != nil {
		return "", err
	}
	if !ok {
		return FirstOfDay(date), nil
	}
	return ref, nil
}

// ParseSequence extrae la secuencia (los últimos 6 caracteres) de un número de remisión.
func ParseSequence(ref string) (int64, error) {
	if len(ref) != len(Prefix)+len(dateLayout)+SequenceWidth || !strings.HasPrefix(ref, Prefix) {
		return 0, fmt.Errorf("delivery: número de remisión inválido %q", ref)
	}
	seq, err := strconv.ParseInt(ref[len(ref)-SequenceWidth:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("delivery: secuencia inválida en %q: %w", ref, err)
	}
	return seq, nil
}

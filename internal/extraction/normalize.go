package extraction

import (
	"math"
	"strconv"
	"strings"

	"github.com/hosteldesk/backend/internal/models"
)

// Kind tags how a raw model value was turned into a typed one.
type Kind int

const (
	Ok Kind = iota
	Defaulted
	Rejected
)

func (k Kind) String() string {
	switch k {
	case Ok:
		return "ok"
	case Defaulted:
		return "defaulted"
	}
	return "rejected"
}

type Result[T any] struct {
	Value T
	Kind  Kind
}

func ok[T any](v T) Result[T]        { return Result[T]{Value: v, Kind: Ok} }
func defaulted[T any](v T) Result[T] { return Result[T]{Value: v, Kind: Defaulted} }
func rejected[T any]() Result[T]     { return Result[T]{Kind: Rejected} }

// Clean trims raw and treats "" and "null" (any case) as absent.
func Clean(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "null") {
		return "", false
	}
	return v, true
}

func enumKey(raw string) string {
	v := strings.ToUpper(raw)
	return strings.NewReplacer("-", "_", " ", "_").Replace(v)
}

// Enum matches raw against allowed after normalization. Absent or unknown
// values are rejected.
func Enum[T ~string](raw string, allowed []T) Result[T] {
	v, present := Clean(raw)
	if !present {
		return rejected[T]()
	}
	key := T(enumKey(v))
	for _, a := range allowed {
		if a == key {
			return ok(a)
		}
	}
	return rejected[T]()
}

func TextOr(raw, fallback string) Result[string] {
	if v, present := Clean(raw); present {
		return ok(v)
	}
	return defaulted(fallback)
}

// RoomTypeOr accepts Single or Double in any case.
func RoomTypeOr(raw, fallback string) Result[string] {
	v, present := Clean(raw)
	if present {
		switch enumKey(v) {
		case "SINGLE":
			return ok(models.RoomSingle)
		case "DOUBLE":
			return ok(models.RoomDouble)
		}
	}
	return defaulted(fallback)
}

// ScoreOr parses an integer priority in [MinPriorityScore, MaxPriorityScore].
func ScoreOr(raw string, fallback int) Result[int] {
	v, present := Clean(raw)
	if !present {
		return defaulted(fallback)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
			return defaulted(fallback)
		}
		n = int(f)
	}
	if n < models.MinPriorityScore || n > models.MaxPriorityScore {
		return defaulted(fallback)
	}
	return ok(n)
}

package prism

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaskKind represents a known data format with masking rules.
type MaskKind string

const (
	MaskName     MaskKind = "name"     // John Smith -> J*** S****
	MaskPhone    MaskKind = "phone"    // 13812345678 -> 138****5678
	MaskIDCard   MaskKind = "idcard"   // 110101199003071234 -> 110101********1234
	MaskBankCard MaskKind = "bankcard" // 6222021234567890 -> 6222********7890
	MaskEmail    MaskKind = "email"    // alice@example.com -> a****@example.com
	MaskAddress  MaskKind = "address"  // 1 Infinite Loop -> 1 I************
	MaskCarPlate MaskKind = "carplate" // AB12345 -> AB****5
	MaskIP       MaskKind = "ip"       // 192.168.1.100 -> 192.168.*.***
	MaskUUID     MaskKind = "uuid"     // 550e8400-e29b-... -> 550e8400-****-...
	MaskPassword MaskKind = "password" // secret -> ******
	MaskCustom   MaskKind = "custom"   // explicit head/tail windows
	MaskFull     MaskKind = "full"     // every rune replaced
)

// DefaultMaskSymbol replaces masked runes when a rule names no symbol.
const DefaultMaskSymbol = "*"

// MaskRule describes how a string field is desensitized.
//
// A window rule keeps the first Head and last Tail runes and replaces every
// rune between them with one Symbol, so the output has the same rune length
// as the input. A Full rule replaces every rune.
type MaskRule struct {
	Kind   MaskKind
	Head   int
	Tail   int
	Symbol string
	Full   bool
}

// symbol returns the first rune of Symbol, or the default symbol.
func (r MaskRule) symbol() rune {
	if sym, size := utf8.DecodeRuneInString(r.Symbol); size > 0 && sym != utf8.RuneError {
		return sym
	}
	return '*'
}

// windows returns the keep windows clamped to zero.
func (r MaskRule) windows() (head, tail int) {
	return max(r.Head, 0), max(r.Tail, 0)
}

// maskPresets holds the keep windows of each builtin kind.
var maskPresets = map[MaskKind]MaskRule{
	MaskName:     {Head: 1},
	MaskPhone:    {Head: 3, Tail: 4},
	MaskIDCard:   {Head: 6, Tail: 4},
	MaskBankCard: {Head: 4, Tail: 4},
	MaskEmail:    {Head: 1},
	MaskAddress:  {Head: 3},
	MaskCarPlate: {Head: 2, Tail: 1},
	MaskPassword: {Full: true},
	MaskFull:     {Full: true},
}

// PresetRule returns the rule a bare `send.mask:"<kind>"` tag produces.
func PresetRule(kind MaskKind) MaskRule {
	rule := maskPresets[kind]
	rule.Kind = kind
	return rule
}

// parseMaskRule parses a send.mask tag value such as "phone",
// "phone,symbol=#" or "custom,head=2,tail=1".
func parseMaskRule(val string) (MaskRule, error) {
	parts := strings.Split(val, ",")
	kind := MaskKind(strings.TrimSpace(parts[0]))
	if !IsValidMaskKind(kind) {
		return MaskRule{}, fmt.Errorf("unknown mask kind %q", kind)
	}

	rule := PresetRule(kind)
	for _, opt := range parts[1:] {
		key, value, ok := strings.Cut(strings.TrimSpace(opt), "=")
		if !ok {
			return MaskRule{}, fmt.Errorf("malformed mask option %q", opt)
		}
		switch key {
		case "head", "tail":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return MaskRule{}, fmt.Errorf("mask %s must be a non-negative integer, got %q", key, value)
			}
			if key == "head" {
				rule.Head = n
			} else {
				rule.Tail = n
			}
		case "symbol":
			if utf8.RuneCountInString(value) != 1 {
				return MaskRule{}, fmt.Errorf("mask symbol must be a single character, got %q", value)
			}
			rule.Symbol = value
		default:
			return MaskRule{}, fmt.Errorf("unknown mask option %q", key)
		}
	}

	return rule, nil
}

// Mask desensitizes value according to rule. It never fails: empty input and
// values shorter than the keep windows are returned unchanged.
func Mask(value string, rule MaskRule) string {
	if value == "" {
		return value
	}

	runes := []rune(value)
	sym := rule.symbol()

	if rule.Full {
		for i := range runes {
			runes[i] = sym
		}
		return string(runes)
	}

	head, tail := rule.windows()
	if head+tail >= len(runes) {
		return value
	}

	for i := head; i < len(runes)-tail; i++ {
		runes[i] = sym
	}
	return string(runes)
}

// IsMasked reports whether value already has the form Mask produces for rule,
// meaning every rune outside the keep windows is the mask symbol.
func IsMasked(value string, rule MaskRule) bool {
	if value == "" {
		return false
	}

	runes := []rune(value)
	sym := rule.symbol()

	if rule.Full {
		return allRunes(runes, sym)
	}

	head, tail := rule.windows()
	if head+tail >= len(runes) {
		return false
	}
	return allRunes(runes[head:len(runes)-tail], sym)
}

func allRunes(runes []rune, sym rune) bool {
	for _, r := range runes {
		if r != sym {
			return false
		}
	}
	return true
}

// Masker applies content-aware masking.
type Masker interface {
	// Mask applies masking to the value. Implementations must not panic on
	// malformed input and should preserve the value's rune length.
	Mask(value string, rule MaskRule) string
}

// MaskDetector is implemented by maskers whose output is not a plain window,
// so the projector can recognize values it already masked.
type MaskDetector interface {
	Masked(value string, rule MaskRule) bool
}

// windowMasker applies the rule's keep windows as-is.
type windowMasker struct{}

// WindowMasker returns a masker that applies the rule's head/tail windows.
func WindowMasker() Masker {
	return &windowMasker{}
}

func (m *windowMasker) Mask(value string, rule MaskRule) string {
	return Mask(value, rule)
}

// nameMasker masks names: John Smith -> J*** S****
type nameMasker struct{}

// NameMasker returns a masker for personal names.
// Preserves the first rune of each word and all whitespace.
func NameMasker() Masker {
	return &nameMasker{}
}

func (m *nameMasker) Mask(value string, rule MaskRule) string {
	sym := rule.symbol()
	runes := []rune(value)
	wordStart := true
	for i, r := range runes {
		if unicode.IsSpace(r) {
			wordStart = true
			continue
		}
		if !wordStart {
			runes[i] = sym
		}
		wordStart = false
	}
	return string(runes)
}

func (m *nameMasker) Masked(value string, rule MaskRule) bool {
	masked := false
	wordStart := true
	for _, r := range value {
		if unicode.IsSpace(r) {
			wordStart = true
			continue
		}
		if !wordStart {
			if r != rule.symbol() {
				return false
			}
			masked = true
		}
		wordStart = false
	}
	return masked
}

// emailMasker masks email format: alice@example.com -> a****@example.com
type emailMasker struct{}

// EmailMasker returns a masker for email addresses.
// Preserves the first rune of the local part and the full domain.
func EmailMasker() Masker {
	return &emailMasker{}
}

func (m *emailMasker) Mask(value string, rule MaskRule) string {
	return Mask(value, m.window(value, rule))
}

func (m *emailMasker) Masked(value string, rule MaskRule) bool {
	return IsMasked(value, m.window(value, rule))
}

// window keeps the domain; without a usable @ the whole value is masked.
func (m *emailMasker) window(value string, rule MaskRule) MaskRule {
	atIdx := strings.LastIndex(value, "@")
	if atIdx < 1 {
		return MaskRule{Kind: rule.Kind, Symbol: rule.Symbol, Full: true}
	}
	w := rule
	w.Head = max(rule.Head, 1)
	w.Tail = utf8.RuneCountInString(value[atIdx:])
	return w
}

// ipMasker masks IPv4 addresses: 192.168.1.100 -> 192.168.*.***
type ipMasker struct{}

// IPMasker returns a masker for IPv4 addresses.
// Preserves the first two octets (network), masks the host octets.
// Anything else is masked entirely.
func IPMasker() Masker {
	return &ipMasker{}
}

func (m *ipMasker) Mask(value string, rule MaskRule) string {
	if m.Masked(value, rule) {
		return value
	}

	parts := strings.Split(value, ".")
	if len(parts) != 4 || !allDigits(parts) {
		return Mask(value, MaskRule{Symbol: rule.Symbol, Full: true})
	}

	sym := string(rule.symbol())
	parts[2] = strings.Repeat(sym, len(parts[2]))
	parts[3] = strings.Repeat(sym, len(parts[3]))
	return strings.Join(parts, ".")
}

func (m *ipMasker) Masked(value string, rule MaskRule) bool {
	parts := strings.Split(value, ".")
	if len(parts) != 4 {
		return IsMasked(value, MaskRule{Symbol: rule.Symbol, Full: true})
	}
	sym := rule.symbol()
	return parts[2] != "" && parts[3] != "" &&
		allRunes([]rune(parts[2]), sym) && allRunes([]rune(parts[3]), sym)
}

func allDigits(parts []string) bool {
	for _, part := range parts {
		if part == "" {
			return false
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// uuidMasker masks UUIDs: 550e8400-e29b-41d4-a716-446655440000 -> 550e8400-****-****-****-************
type uuidMasker struct{}

// UUIDMasker returns a masker for UUIDs.
// Preserves the first segment, masks the rest keeping the dashes.
func UUIDMasker() Masker {
	return &uuidMasker{}
}

func (m *uuidMasker) Mask(value string, rule MaskRule) string {
	if m.Masked(value, rule) {
		return value
	}

	if _, err := uuid.Parse(value); err != nil {
		return Mask(value, MaskRule{Symbol: rule.Symbol, Full: true})
	}

	parts := strings.Split(value, "-")
	if len(parts) != 5 {
		// urn:uuid: and braced forms parse but are not segmented the same way
		return Mask(value, MaskRule{Symbol: rule.Symbol, Full: true})
	}

	sym := string(rule.symbol())
	for i := 1; i < len(parts); i++ {
		parts[i] = strings.Repeat(sym, len(parts[i]))
	}
	return strings.Join(parts, "-")
}

func (m *uuidMasker) Masked(value string, rule MaskRule) bool {
	parts := strings.Split(value, "-")
	if len(parts) != 5 {
		return IsMasked(value, MaskRule{Symbol: rule.Symbol, Full: true})
	}
	sym := rule.symbol()
	for _, part := range parts[1:] {
		if part == "" || !allRunes([]rune(part), sym) {
			return false
		}
	}
	return true
}

// builtinMaskers returns the default masker registry.
func builtinMaskers() map[MaskKind]Masker {
	window := WindowMasker()
	return map[MaskKind]Masker{
		MaskName:     NameMasker(),
		MaskPhone:    window,
		MaskIDCard:   window,
		MaskBankCard: window,
		MaskEmail:    EmailMasker(),
		MaskAddress:  window,
		MaskCarPlate: window,
		MaskIP:       IPMasker(),
		MaskUUID:     UUIDMasker(),
		MaskPassword: window,
		MaskCustom:   window,
		MaskFull:     window,
	}
}

package gen

import (
	"strings"

	"github.com/ImpGuard/instaparse/schema/field"
)

// =============================================================================
// Interface Segregation: a backend is a set of small, focused emitters
// =============================================================================

// TypeMapper maps schema types to native type names.
type TypeMapper interface {
	// PrimitiveType returns the native type of a primitive.
	PrimitiveType(t field.Type) string
	// ListType returns the native collection type holding elem values.
	ListType(elem string) string
	// RecordType returns the native type a parsed record is held in.
	RecordType(name string) string
}

// Layout describes the lexical conventions of a target language.
type Layout interface {
	// Ext returns the file extension, including the dot.
	Ext() string
	// Comment returns the line comment prefix.
	Comment() string
	// Indent returns one level of indentation.
	Indent() string
	// FileName returns the file name of a unit. The name is the record
	// name for declaration units and the main name for the driver unit.
	FileName(kind UnitKind, name string) string
}

// UnitEmitter emits the content of whole units.
type UnitEmitter interface {
	// Declaration emits the complete declaration unit of a record.
	Declaration(u *Unit, r *Record, members []Member)
	// BeginUtil emits the opening of the utility unit.
	BeginUtil(u *Unit, s *Schema)
	// Helpers emits the conversion helpers and cursor primitives.
	Helpers(u *Unit, s *Schema)
	// EndUtil emits the closing of the utility unit.
	EndUtil(u *Unit, s *Schema)
	// Driver emits the complete driver unit.
	Driver(u *Unit, d Driver)
}

// RoutineEmitter emits the statements of a parse routine.
type RoutineEmitter interface {
	BeginRoutine(u *Unit, r Routine)
	EndRoutine(u *Unit, r Routine)
	// ExpectBlank reads one line, fails unless it is blank, and advances
	// the line counter.
	ExpectBlank(u *Unit, site Site)
	// ReadText reads one line into the text local.
	ReadText(u *Unit, site Site)
	// ReadTokens reads one line and splits it into the tokens local.
	ReadTokens(u *Unit, site Site)
	// CheckTokens fails with msg unless there are exactly n tokens,
	// or at least n if atLeast is set.
	CheckTokens(u *Unit, site Site, n int, atLeast bool, msg Message)
	// Convert converts src to kind and stores it in dst. A SourceRest
	// source converts a list.
	Convert(u *Unit, site Site, dst Dest, kind field.Type, src Source)
	// CallRecord delegates to the parse routine of the named record.
	CallRecord(u *Unit, site Site, dst Dest, record string)
	// AdvanceLine increments the line counter.
	AdvanceLine(u *Unit)
	// InitCollection stores an empty collection of type typ in f.
	InitCollection(u *Unit, f *Field, typ string)
	// DeclareElement declares the element local of type typ.
	DeclareElement(u *Unit, f *Field, typ string)
	// AppendElement appends the element local to f.
	AppendElement(u *Unit, f *Field)
	// RequireElements fails with msg if f holds no elements.
	RequireElements(u *Unit, site Site, f *Field, msg Message)
}

// ControlEmitter emits control flow.
type ControlEmitter interface {
	// Block emits body in a labeled block scope.
	Block(u *Unit, label string, body func())
	// CountedLoop emits body in a loop running n times. The loop
	// variable is visible to Iteration parts and CondNotLast.
	CountedLoop(u *Unit, n Count, body func())
	// UnboundedLoop emits body in a loop left only by Break.
	UnboundedLoop(u *Unit, body func())
	// Break leaves the innermost loop.
	Break(u *Unit)
	// If emits body guarded by c.
	If(u *Unit, c Cond, body func())
	// Guard emits body and replaces every parse failure inside it with
	// msg. Other failures propagate unchanged.
	Guard(u *Unit, site Site, msg Message, body func(Site))
	// Attempt emits body as a speculative attempt. It saves the read
	// position and the line counter before body runs. A parse failure
	// in body restores both and runs the code emitted by onRollback.
	// Other failures propagate unchanged.
	Attempt(u *Unit, site Site, body func(Site), onRollback func())
}

// Backend generates code for one target language.
type Backend interface {
	// Name returns the backend name (e.g., "go", "java").
	Name() string
	TypeMapper
	Layout
	UnitEmitter
	RoutineEmitter
	ControlEmitter
}

// Formatter is implemented by backends that post-process units before
// they are written.
type Formatter interface {
	Format(path string, src []byte) ([]byte, error)
}

// Checker is implemented by backends with target-specific schema
// restrictions, such as reserved words.
type Checker interface {
	Check(s *Schema) error
}

// Site identifies where a statement is emitted.
type Site struct {
	// Record is the record whose routine is emitted.
	Record string
	// Depth counts the Guard and Attempt bodies around the statement.
	Depth int
}

// Nested returns the site of a Guard or Attempt body.
func (s Site) Nested() Site {
	s.Depth++
	return s
}

// Dest is the target of a conversion or record call.
type Dest struct {
	Field *Field
	// Elem stores into the element local instead of the field.
	Elem bool
}

// SourceKind selects the text a conversion reads.
type SourceKind uint8

// Source kinds.
const (
	// SourceText is the whole line.
	SourceText SourceKind = iota
	// SourceToken is the token at Index.
	SourceToken
	// SourceRest is the tokens from Index to the end.
	SourceRest
)

// Source is the input of a conversion.
type Source struct {
	Kind  SourceKind
	Index int
}

// Count is a repetition count: a literal, or the value of an earlier field.
type Count struct {
	N     int
	Field *Field
}

// CondKind selects a condition.
type CondKind uint8

// Condition kinds.
const (
	// CondNotLast holds inside a counted loop on every iteration but the last.
	CondNotLast CondKind = iota
	// CondHasElements holds if Field already holds elements.
	CondHasElements
)

// Cond is a condition for If.
type Cond struct {
	Kind  CondKind
	Count Count
	Field *Field
}

// Member is one field of a record declaration.
type Member struct {
	Field *Field
	Type  string
}

// Locals is the set of locals a parse routine uses.
type Locals struct {
	Text   bool
	Tokens bool
}

// Routine describes the parse routine of a record.
type Routine struct {
	Record *Record
	// Type is the native type of the record.
	Type   string
	Locals Locals
}

// Driver describes the driver unit.
type Driver struct {
	Root *Record
	// RootType is the native type of the root record.
	RootType string
	// Hook is the body of the user hook, one line per element.
	Hook []string
}

// PartKind selects the content of a message part.
type PartKind uint8

// Message part kinds.
const (
	PartText PartKind = iota
	// PartExpected is the value of a Count.
	PartExpected
	// PartTokens is the number of tokens read.
	PartTokens
	// PartIteration is the counted loop variable.
	PartIteration
)

// Part is a piece of a generated error message.
type Part struct {
	Kind  PartKind
	Text  string
	Count Count
}

// Message is a generated error message, composed of literal text and
// values known only when the generated parser runs.
type Message []Part

// Text returns a literal message part.
func Text(s string) Part { return Part{Kind: PartText, Text: s} }

// Expected returns a part rendering the value of c.
func Expected(c Count) Part { return Part{Kind: PartExpected, Count: c} }

// TokenCount returns a part rendering the number of tokens read.
func TokenCount() Part { return Part{Kind: PartTokens} }

// Iteration returns a part rendering the counted loop variable.
func Iteration() Part { return Part{Kind: PartIteration} }

// Render concatenates the message. Literal text is passed to lit and
// other parts to value.
func (m Message) Render(lit func(string) string, value func(Part) string) string {
	var b strings.Builder
	for _, p := range m {
		if p.Kind == PartText {
			b.WriteString(lit(p.Text))
		} else {
			b.WriteString(value(p))
		}
	}
	return b.String()
}

// Static reports if the message has no runtime values.
func (m Message) Static() bool {
	for _, p := range m {
		if p.Kind != PartText {
			return false
		}
	}
	return true
}

// Accepted spellings of numbers in the input. Generated parsers of every
// backend reject any other spelling.
const (
	IntSyntax   = `^[+-]?[0-9]+$`
	FloatSyntax = `^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?$`
)

// Package field defines the value types a record field can hold.
//
// A field is either a primitive, a list of primitives, or a reference to
// another record of the same format:
//
//	field.ParseType("int")        // TypeInt
//	field.ParseType("list(bool)") // list of TypeBool
//	field.ParseType("Point")      // reference to record Point
//
// # Primitive Types
//
// Four primitive types exist, spelled the same way in every format file:
//
//	int     // whole number
//	float   // floating point number
//	string  // raw line or token text
//	bool    // "true" or "false", case-insensitive
//
// Lists are written as list(<primitive>). Lists of lists and lists of
// records are expressed with repeating lines instead.
package field

package python

import (
	"fmt"

	"github.com/ImpGuard/instaparse/compiler/gen"
	"github.com/ImpGuard/instaparse/schema/field"
)

// convFunc returns the function converting one value of t.
func convFunc(t field.Type) string { return "parse_" + t.String() }

const stateClass = `class ParseError(Exception):
    """Raised for malformed input."""


class ParseState:
    """The read cursor and the line counter shared by all parse functions."""

    def __init__(self, f):
        self.f = f
        self.line = 1

    def mark(self):
        return self.f.tell(), self.line

    def reset(self, mark):
        self.f.seek(mark[0])
        self.line = mark[1]

    def error(self, record, message):
        return ParseError('Parser Error on line %d in "%s": %s' % (self.line, record, message))

    def read_line(self, record):
        text = self.f.readline()
        if text == "":
            raise self.error(record, "Unexpected end of file.")
        return text.rstrip("\r\n")

    def read_fields(self, record):
        return self.read_line(record).split(DELIMITER)

    def expect_blank(self, record):
        text = self.read_line(record)
        if text.strip() != "":
            raise self.error(record, 'Expecting an empty line (found "%s").' % text)
        self.line += 1

    def expect_eof(self, record):
        while True:
            text = self.f.readline()
            if text == "":
                return
            if text.strip() != "":
                raise self.error(record, "Finished parsing but did not reach end of file.")
            self.line += 1`

var convFuncs = fmt.Sprintf(`INT_SYNTAX = re.compile(%s)
FLOAT_SYNTAX = re.compile(%s)


def parse_int(state, record, text):
    value = text.strip()
    if not INT_SYNTAX.match(value):
        raise state.error(record, 'Expecting an int (found "%%s").' %% text)
    return int(value)


def parse_float(state, record, text):
    value = text.strip()
    if not FLOAT_SYNTAX.match(value):
        raise state.error(record, 'Expecting a float (found "%%s").' %% text)
    return float(value)


def parse_string(state, record, text):
    return text


def parse_bool(state, record, text):
    value = text.strip().lower()
    if value == "true":
        return True
    if value == "false":
        return False
    raise state.error(record, 'Expecting a bool (found "%%s").' %% text)`, quote(gen.IntSyntax), quote(gen.FloatSyntax))

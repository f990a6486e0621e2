package java

import (
	"fmt"

	"github.com/go-openapi/inflect"

	"github.com/ImpGuard/instaparse/compiler/gen"
	"github.com/ImpGuard/instaparse/schema/field"
)

// convMethod returns the static method converting one value of t.
func convMethod(t field.Type) string { return "parse" + inflect.Capitalize(t.String()) }

// stateClass is the read cursor and line counter shared by all parse
// methods, and the exception raised for malformed input.
const stateClass = `static class ParseException extends RuntimeException {
    ParseException(String message) {
        super(message);
    }
}

static class ParseState {
    final RandomAccessFile file;
    int line = 1;

    ParseState(RandomAccessFile file) {
        this.file = file;
    }

    long[] mark() throws IOException {
        return new long[] {file.getFilePointer(), line};
    }

    void reset(long[] mark) throws IOException {
        file.seek(mark[0]);
        line = (int) mark[1];
    }

    ParseException error(String record, String message) {
        return new ParseException("Parser Error on line " + line + " in \"" + record + "\": " + message);
    }

    String readLine(String record) throws IOException {
        String text = file.readLine();
        if (text == null) {
            throw error(record, "Unexpected end of file.");
        }
        return text;
    }

    String[] readFields(String record) throws IOException {
        return readLine(record).split(Pattern.quote(DELIMITER), -1);
    }

    void expectBlank(String record) throws IOException {
        String text = readLine(record);
        if (!text.trim().isEmpty()) {
            throw error(record, "Expecting an empty line (found \"" + text + "\").");
        }
        line++;
    }

    void expectEOF(String record) throws IOException {
        String text;
        while ((text = file.readLine()) != null) {
            if (!text.trim().isEmpty()) {
                throw error(record, "Finished parsing but did not reach end of file.");
            }
            line++;
        }
    }
}`

// convMethods holds the conversion method of each primitive.
var convMethods = map[field.Type]string{
	field.TypeInt: fmt.Sprintf(`static int parseInt(ParseState s, String record, String text) {
    String t = text.trim();
    try {
        if (t.matches(%s)) {
            return Integer.parseInt(t);
        }
    } catch (NumberFormatException e) {
        // Out of range.
    }
    throw s.error(record, "Expecting an int (found \"" + text + "\").");
}`, quote(gen.IntSyntax)),
	field.TypeFloat: fmt.Sprintf(`static double parseFloat(ParseState s, String record, String text) {
    String t = text.trim();
    if (!t.matches(%s)) {
        throw s.error(record, "Expecting a float (found \"" + text + "\").");
    }
    return Double.parseDouble(t);
}`, quote(gen.FloatSyntax)),
	field.TypeString: `static String parseString(ParseState s, String record, String text) {
    return text;
}`,
	field.TypeBool: `static boolean parseBool(ParseState s, String record, String text) {
    switch (text.trim().toLowerCase()) {
        case "true":
            return true;
        case "false":
            return false;
        default:
            throw s.error(record, "Expecting a bool (found \"" + text + "\").");
    }
}`,
}

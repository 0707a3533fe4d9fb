package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestParseValidFile(t *testing.T) {
	data := "email,full_name,phone,birth_date\n" +
		"test1@example.com,Test User 1,123456789,1990-01-01\n" +
		"test2@example.com,Test User 2,987654321,1985-05-15\n"

	rows, errs, err := ParseAt(strings.NewReader(data), testNow)
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Len(t, rows, 2)

	require.Equal(t, 1, rows[0].RowNumber)
	require.Equal(t, "test1@example.com", rows[0].Email)
	require.Equal(t, "Test User 1", rows[0].FullName)
	require.Equal(t, "123456789", rows[0].Phone)
	require.Equal(t, "1990-01-01", rows[0].BirthDate)

	require.Equal(t, 2, rows[1].RowNumber)
	require.Equal(t, "test2@example.com", rows[1].Email)
}

func TestParseSkipsEmptyLines(t *testing.T) {
	data := "email\n" +
		"a@example.com\n" +
		"\n" +
		"b@example.com\n"

	rows, errs, err := ParseAt(strings.NewReader(data), testNow)
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Len(t, rows, 2)
	require.Equal(t, 2, rows[1].RowNumber)
}

func TestParseKeepsUnknownColumns(t *testing.T) {
	data := "email,shirt_size\n" +
		"a@example.com,M\n"

	rows, errs, err := ParseAt(strings.NewReader(data), testNow)
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Equal(t, "M", rows[0].Extra["shirt_size"])

	fields := rows[0].Fields()
	require.Equal(t, "a@example.com", fields["email"])
	require.Equal(t, "M", fields["shirt_size"])
}

func TestParseMissingEmail(t *testing.T) {
	data := "email,full_name\n" +
		",Utan Epost\n"

	_, errs, err := ParseAt(strings.NewReader(data), testNow)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	require.Equal(t, 1, errs[0].RowNumber)
	require.Equal(t, FieldEmail, errs[0].Field)
	require.Equal(t, MsgEmailMissing, errs[0].Message)
}

func TestParseAccumulatesErrorsInFieldOrder(t *testing.T) {
	data := "email,full_name,phone,birth_date\n" +
		",Trasig Rad,123,2099-01-01\n"

	_, errs, err := ParseAt(strings.NewReader(data), testNow)
	require.NoError(t, err)
	require.Len(t, errs, 3)
	require.Equal(t, FieldEmail, errs[0].Field)
	require.Equal(t, FieldPhone, errs[1].Field)
	require.Equal(t, FieldBirthDate, errs[2].Field)
	require.Equal(t, MsgPhoneInvalid, errs[1].Message)
	require.Equal(t, MsgBirthDateInvalid, errs[2].Message)
}

func TestParseErrorOrderFollowsRowOrder(t *testing.T) {
	data := "email\n" +
		"bad-address\n" +
		"ok@example.com\n" +
		"also-bad\n"

	_, errs, err := ParseAt(strings.NewReader(data), testNow)
	require.NoError(t, err)
	require.Len(t, errs, 2)
	require.Equal(t, 1, errs[0].RowNumber)
	require.Equal(t, 3, errs[1].RowNumber)
	require.Equal(t, MsgEmailInvalid, errs[0].Message)
}

func TestParseMalformedFile(t *testing.T) {
	data := "email,full_name\n" +
		"\"unterminated,Quote\n"

	_, _, err := ParseAt(strings.NewReader(data), testNow)
	require.Error(t, err)
}

func TestParseEmptyInput(t *testing.T) {
	_, _, err := ParseAt(strings.NewReader(""), testNow)
	require.Error(t, err)
	require.Contains(t, err.Error(), "rubrikrad")
}

package importer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreviewGoldenTwoRowImport(t *testing.T) {
	data := "email,full_name,phone,birth_date\n" +
		"test1@example.com,Test User 1,123456789,1990-01-01\n" +
		"test2@example.com,Test User 2,987654321,1985-05-15\n"

	rows, errs, err := ParseAt(strings.NewReader(data), testNow)
	require.NoError(t, err)

	preview := NewPreview(rows, errs)
	require.True(t, preview.CanCommit())
	require.Equal(t, "Förhandsgranska import (2 medlemmar)", preview.Summary())
	require.Equal(t, "Importera 2 medlemmar", preview.CommitLabel())
	require.Empty(t, preview.ErrorLines())
	require.Len(t, preview.RowWindow(), 2)
	require.Empty(t, preview.RowFooter())
}

func TestPreviewBlocksCommitOnAnyError(t *testing.T) {
	preview := NewPreview(
		[]ImportRow{{RowNumber: 1}},
		[]ImportError{{RowNumber: 1, Field: FieldEmail, Message: MsgEmailMissing}},
	)
	require.False(t, preview.CanCommit())
	require.Equal(t, "Fel hittades (1)", preview.ErrorHeading())
	require.Equal(t, []string{"Rad 1: email - E-postadress saknas"}, preview.ErrorLines())
}

func TestPreviewCapsErrorListButNotGate(t *testing.T) {
	var errs []ImportError
	for i := 1; i <= 8; i++ {
		errs = append(errs, ImportError{RowNumber: i, Field: FieldEmail, Message: MsgEmailInvalid})
	}

	preview := NewPreview(nil, errs)
	require.False(t, preview.CanCommit())
	require.Equal(t, "Fel hittades (8)", preview.ErrorHeading())

	lines := preview.ErrorLines()
	require.Len(t, lines, 6)
	require.Equal(t, "...och 3 till", lines[5])
}

func TestPreviewCapsRowWindow(t *testing.T) {
	var rows []ImportRow
	for i := 1; i <= 14; i++ {
		rows = append(rows, ImportRow{RowNumber: i, Email: fmt.Sprintf("user%d@example.com", i)})
	}

	preview := NewPreview(rows, nil)
	require.True(t, preview.CanCommit())
	require.Len(t, preview.RowWindow(), 10)
	require.Equal(t, "...och 4 till", preview.RowFooter())
	require.Equal(t, "Importera 14 medlemmar", preview.CommitLabel())
}

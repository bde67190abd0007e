package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"annotator/internal/models"
)

const header = "image,ruler,border,stain,subtle_ruler,subtle_border,subtle_stain,comments\n"

func TestCreateEmptyWritesHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotations.csv")

	s, err := CreateEmpty(path)
	require.NoError(t, err)
	require.Equal(t, 0, s.Len())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, header, string(data))

	reopened, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, 0, reopened.Len())
}

func TestSaveWritesFixedColumnOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotations.csv")
	s := NewStore(path)
	s.Put("a.png", models.Annotation{Ruler: true})
	s.Put("b.png", models.Annotation{SubtleStain: true, Comments: "faint, near edge"})

	require.NoError(t, s.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, header+
		"a.png,1,0,0,0,0,0,\n"+
		"b.png,0,0,0,0,0,1,\"faint, near edge\"\n", string(data))
}

func TestSaveTwiceIsIdentical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotations.csv")
	s := NewStore(path)
	s.Put("c.jpg", models.Annotation{Border: true, Comments: "line\nbreak"})
	s.Put("a.png", models.Annotation{})

	require.NoError(t, s.Save())
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, s.Save())
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestPutOverwritesKeepingPosition(t *testing.T) {
	s := NewStore("")
	s.Put("a.png", models.Annotation{Ruler: true})
	s.Put("b.png", models.Annotation{})
	s.Put("a.png", models.Annotation{Stain: true})

	require.Equal(t, []string{"a.png", "b.png"}, s.Images())
	a, ok := s.Get("a.png")
	require.True(t, ok)
	require.Equal(t, models.Annotation{Stain: true}, a)
}

func TestReadCSVAcceptsForeignFormatting(t *testing.T) {
	in := "comments,image,ruler,border,stain,subtle_ruler,subtle_border,subtle_stain\n" +
		"dark corner,x.png,1.0,0.0,True,false,,0\n" +
		",y.png,0,1,0,0,1,0\n"

	s, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []string{"x.png", "y.png"}, s.Images())

	x, _ := s.Get("x.png")
	require.Equal(t, models.Annotation{Ruler: true, Stain: true, Comments: "dark corner"}, x)

	y, _ := s.Get("y.png")
	require.Equal(t, models.Annotation{Border: true, SubtleBorder: true}, y)
}

func TestReadCSVRejectsMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("ruler,border,stain,subtle_ruler,subtle_border,subtle_stain,comments\n"))
	require.ErrorIs(t, err, ErrSchema)

	_, err = ReadCSV(strings.NewReader(""))
	require.ErrorIs(t, err, ErrSchema)
}

func TestReadCSVRejectsBadRows(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(header + "a.png,1,0,0,0,0\n"))
	require.ErrorIs(t, err, ErrSchema)

	_, err = ReadCSV(strings.NewReader(header + "a.png,yes please,0,0,0,0,0,\n"))
	require.Error(t, err)

	_, err = ReadCSV(strings.NewReader(header + "a.png,1,0,0,0,0,0,\na.png,0,0,0,0,0,0,\n"))
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotations.csv")
	s := NewStore(path)
	s.Put("z.jpeg", models.Annotation{Ruler: true, SubtleBorder: true, Comments: `quoted "text"`})
	require.NoError(t, s.Save())

	reopened, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, path, reopened.Path())

	a, ok := reopened.Get("z.jpeg")
	require.True(t, ok)
	require.Equal(t, models.Annotation{Ruler: true, SubtleBorder: true, Comments: `quoted "text"`}, a)
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotations.xlsx")
	s := NewStore("")
	s.Put("a.png", models.Annotation{Ruler: true, Comments: "edge"})

	require.NoError(t, ExportXLSX(path, s))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, models.Columns[:], rows[0])
	require.Equal(t, []string{"a.png", "1", "0", "0", "0", "0", "0", "edge"}, rows[1])
}

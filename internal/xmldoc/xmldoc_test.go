package xmldoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Node {
	t.Helper()
	doc, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func TestParse_Malformed(t *testing.T) {
	tests := map[string]string{
		"empty":           "",
		"whitespace":      "   \n",
		"unclosed":        "<a><b></a>",
		"garbage":         "this is not xml",
		"two roots":       "<a/><b/>",
		"text after root": "<a/>trailing",
		"bad entity":      "<a>&nope;</a>",
	}

	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(src))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)

			var parseErr *ParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestParse_Latin1Declaration(t *testing.T) {
	src := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<Usuarios><Usuario email=\"jose@x.com\"><nombreCompleto>Jos\xe9 Pe\xf1a</nombreCompleto></Usuario></Usuarios>"

	doc := mustParse(t, src)

	name := doc.FindPath("Usuario", "nombreCompleto")
	require.NotNil(t, name)
	assert.Equal(t, "José Peña", name.Text())
}

func TestParse_DeclaredEncodings(t *testing.T) {
	tests := map[string]string{
		"windows-1252": "<?xml version=\"1.0\" encoding=\"windows-1252\"?><a>Espa\xf1a</a>",
		"lower case":   "<?xml version=\"1.0\" encoding=\"iso-8859-1\"?><a>Espa\xf1a</a>",
		"utf-8":        "<?xml version=\"1.0\" encoding=\"UTF-8\"?><a>España</a>",
	}

	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			doc := mustParse(t, src)
			assert.Equal(t, "España", doc.Text())
		})
	}
}

func TestParse_UnknownEncoding(t *testing.T) {
	_, err := Parse(strings.NewReader(`<?xml version="1.0" encoding="x-made-up"?><a/>`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParse_Tree(t *testing.T) {
	doc := mustParse(t, `<?xml version="1.0" encoding="UTF-8"?>
<root version="2">
  <item id="1">one <b>bold</b> &amp; more</item>
  <item id="">two</item>
</root>`)

	root := doc.Root()
	assert.Equal(t, "root", root.Name)
	require.Len(t, root.Children, 2)

	v, ok := root.Attr("version")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	first := root.Children[0]
	assert.Equal(t, "one bold & more", first.Text())

	id, ok := root.Children[1].Attr("id")
	assert.True(t, ok)
	assert.Empty(t, id)

	_, ok = root.Children[1].Attr("missing")
	assert.False(t, ok)
}

func TestNode_ChildPairs(t *testing.T) {
	doc := mustParse(t, `<root>
  <flightReservation>
    <flightSeat><seatNumber>1A</seatNumber></flightSeat>
    <wrapper><flightSeat><seatNumber>NESTED</seatNumber></flightSeat></wrapper>
    <flightSeat><seatNumber>2C</seatNumber></flightSeat>
  </flightReservation>
  <flightSeat><seatNumber>ORPHAN</seatNumber></flightSeat>
</root>`)

	seats := doc.ChildPairs("flightReservation", "flightSeat")
	require.Len(t, seats, 2)

	first, _ := seats[0].ChildText("seatNumber")
	second, _ := seats[1].ChildText("seatNumber")
	assert.Equal(t, "1A", first)
	assert.Equal(t, "2C", second)
}

func TestNode_ChildPairs_DocumentOrder(t *testing.T) {
	doc := mustParse(t, `<a><b n="1"/><x><a><b n="2"/></a></x><b n="3"/></a>`)

	var order []string
	for _, b := range doc.ChildPairs("a", "b") {
		n, _ := b.Attr("n")
		order = append(order, n)
	}
	assert.Equal(t, []string{"1", "2", "3"}, order)
}

func TestNode_FindPath(t *testing.T) {
	doc := mustParse(t, `<Reservacion>
  <usuario>a@x.com</usuario>
  <pasajero>
    <nombreCompleto>Jane Doe</nombreCompleto>
  </pasajero>
  <detalles><precioBase>10</precioBase></detalles>
</Reservacion>`)

	reservation := doc.Find("Reservacion")
	require.NotNil(t, reservation)

	name, ok := reservation.PathText("pasajero", "nombreCompleto")
	assert.True(t, ok)
	assert.Equal(t, "Jane Doe", name)

	_, ok = reservation.PathText("detalles", "nombreCompleto")
	assert.False(t, ok)

	assert.True(t, doc.Has("precioBase"))
	assert.False(t, doc.Has("metodoSeleccion"))
	assert.Nil(t, doc.FindPath())
}

func TestNode_FindExcludesSelf(t *testing.T) {
	doc := mustParse(t, `<a><a>inner</a></a>`)

	outer := doc.Find("a")
	require.NotNil(t, outer)
	inner := outer.Find("a")
	require.NotNil(t, inner)
	assert.Equal(t, "inner", inner.Text())
	assert.Nil(t, inner.Find("a"))
}

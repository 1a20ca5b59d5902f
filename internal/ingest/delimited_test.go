package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArticlesRenamesUniMed(t *testing.T) {
	text := "Referencia;Sección;Descripción;Familia;Ult.Pro;Ult. Costo;Uni.Med\n001;1;Jamón;05;P1;3,50;P\n"

	records, err := ParseDelimited(text)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "P", records[0]["UniMed"])
	_, hasRaw := records[0]["Uni.Med"]
	assert.False(t, hasRaw)

	articles, err := ParseArticles(text)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "001", articles[0].Reference)
	assert.Equal(t, "05", articles[0].Family)
	assert.Equal(t, "P", articles[0].UnitOfMeasure)
	assert.Equal(t, "3,50", articles[0].LastCost)
	assert.Equal(t, "Jamón", articles[0].Description)
}

func TestParseDelimitedStripsQuotesAndSkipsShortRows(t *testing.T) {
	text := "\"Cod.\";\"Tienda\";\"Cód. Art.\";\"Descripción\";\"P.V.P.\";\"PVP Oferta\";\"Fec.Ini.Ofe.\";\"Fec.Fin.Ofe.\"\r\n" +
		"\r\n" +
		"\"10\";\"CH2\";\" 001 \";\"Jamón\";\"5,00\";\"3,50\";\"01/10\";\"15/10\"\r\n" +
		"11;AL1;002\r\n"

	tariffs, err := ParseTariffs(text)
	require.NoError(t, err)
	require.Len(t, tariffs, 1)
	assert.Equal(t, "CH2", tariffs[0].Store)
	assert.Equal(t, "001", tariffs[0].ArticleRef)
	assert.Equal(t, "3,50", tariffs[0].OfferPrice)
	assert.Equal(t, "15/10", tariffs[0].OfferEnd)
}

func TestParseArticlesRejectsMissingReference(t *testing.T) {
	text := "Codigo;Descripción\n001;Jamón\n"

	_, err := ParseArticles(text)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidFormat))
}

func TestParseTariffsRejectsMissingStore(t *testing.T) {
	text := "Referencia;Sección;Descripción\n001;1;Jamón\n"

	_, err := ParseTariffs(text)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestParseDelimitedNeedsDataRows(t *testing.T) {
	_, err := ParseDelimited("Referencia;Descripción\n\n")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ParseArticles("Referencia;Descripción;Familia\n001;Jamón\n")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestParseArticlesAcceptsConverterHeaders(t *testing.T) {
	text := "Referencia;Sección;Descripción;Familia;Ult.Pro;Ult. Costo IVA;UN\n002;2;Chorizo;07;P9;12,10;U\n"

	articles, err := ParseArticles(text)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "12,10", articles[0].LastCost)
	assert.Equal(t, "U", articles[0].UnitOfMeasure)
}

func TestDecodeTextLatin1(t *testing.T) {
	raw := []byte("Referencia;Descripci\xf3n\n001;Jam\xf3n\n")
	assert.Equal(t, "Referencia;Descripción\n001;Jamón\n", DecodeText(raw))

	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Referencia")...)
	assert.Equal(t, "Referencia", DecodeText(bom))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Artículos")
	require.NoError(t, err)
	assert.Equal(t, KindArticles, k)

	_, err = ParseKind("pedidos")
	assert.Error(t, err)
}

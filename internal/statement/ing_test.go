package statement

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseING(t *testing.T) {
	t.Parallel()

	data := strings.Join([]string{
		`"Date","Name / Description","Account","Counterparty","Code","Debit/credit","Amount (EUR)","Transaction type","Notifications"`,
		`"20240101","Jumbo Supermarket","NL20INGB0001234567","NL98INGB0003856625","BA","Debit","125,43","Payment terminal","Card sequence 006"`,
		`"20240103","Salary January","NL20INGB0001234567","NL11RABO0104955555","OV","Credit","2750,00","Transfer","Monthly salary"`,
	}, "\n")

	res, err := ParseING(strings.NewReader(data))
	require.NoError(t, err)
	require.Empty(t, res.Malformed)
	require.Len(t, res.Entries, 2)

	groceries := res.Entries[0]
	require.Equal(t, "Jumbo Supermarket", groceries.Name)
	require.Equal(t, int64(12543), groceries.AmountCents)
	require.Equal(t, Debit, groceries.Direction)
	require.Equal(t, int64(-12543), groceries.SignedCents())
	require.Equal(t, "2024-01-01", groceries.Date.Format(time.DateOnly))
	require.Equal(t, "NL20INGB0001234567", groceries.Account)
	require.NotEmpty(t, groceries.ID)

	salary := res.Entries[1]
	require.Equal(t, Credit, salary.Direction)
	require.Equal(t, int64(275000), salary.SignedCents())
}

func TestParseINGDutchDirectionWords(t *testing.T) {
	t.Parallel()

	data := strings.Join([]string{
		`"Datum","Naam / Omschrijving","Rekening","Tegenrekening","Code","Af Bij","Bedrag (EUR)","Mutatiesoort","Mededelingen"`,
		`"20240205","Albert Heijn 1403","NL20INGB0001234567","","BA","Af","18,95","Betaalautomaat",""`,
		`"20240206","Terugstorting","NL20INGB0001234567","","GT","Bij","9,99","Online bankieren",""`,
	}, "\n")

	res, err := ParseING(strings.NewReader(data))
	require.NoError(t, err)
	require.Empty(t, res.Malformed)
	require.Len(t, res.Entries, 2)
	require.Equal(t, Debit, res.Entries[0].Direction)
	require.Equal(t, Credit, res.Entries[1].Direction)
}

func TestParseINGMalformedRowsAreReportedNotDropped(t *testing.T) {
	t.Parallel()

	data := strings.Join([]string{
		`"20240101","OK row","NL20","","BA","Debit","10,00","x",""`,
		`"not-a-date","Bad date","NL20","","BA","Debit","10,00","x",""`,
		`"20240102","Bad amount","NL20","","BA","Debit","1,2,3","x",""`,
		`"20240103","Bad direction","NL20","","BA","Sideways","10,00","x",""`,
	}, "\n")

	res, err := ParseING(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	require.Len(t, res.Malformed, 3)
	require.Equal(t, 2, res.Malformed[0].Line)
	require.ErrorContains(t, res.Malformed[0], "parse date")
	require.ErrorContains(t, res.Malformed[2], "unknown direction")
}

func TestParseINGDeterministicIDs(t *testing.T) {
	t.Parallel()

	row := `"20240101","Jumbo","NL20","","BA","Debit","125,43","x",""`
	first, err := ParseING(strings.NewReader(row))
	require.NoError(t, err)
	second, err := ParseING(strings.NewReader(row))
	require.NoError(t, err)
	require.Equal(t, first.Entries[0].ID, second.Entries[0].ID)
}

func TestParseAmountCents(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "125,43", want: 12543},
		{in: "125.43", want: 12543},
		{in: "0,01", want: 1},
		{in: "2750,00", want: 275000},
		{in: "1,234", wantErr: true},
		{in: "-5,00", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseAmountCents(tc.in)
		if tc.wantErr {
			require.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

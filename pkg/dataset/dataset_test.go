package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "rfm-segmentation/pkg/errors"
)

const floHeader = "master_id,order_channel,last_order_channel,first_order_date,last_order_date," +
	"last_order_date_online,last_order_date_offline,order_num_total_ever_online,order_num_total_ever_offline," +
	"customer_value_total_ever_offline,customer_value_total_ever_online,interested_in_categories_12\n"

func TestCSVSource_Load(t *testing.T) {
	tmpDir := t.TempDir()
	body := floHeader +
		`cc294636-19f0-11eb-8d74-000d3a38a36f,Android App,Offline,2020-10-30,2021-02-26,2021-02-21,2021-02-26,4.0,1.0,139.99,799.38,[KADIN]` + "\n" +
		`f431bd5a-ab7b-11e9-a2fc-000d3a38a36f,Android App,Mobile,2017-02-08,2021-02-16,2021-02-16,2020-01-10,19.0,2.0,159.97,1853.58,"[ERKEK, COCUK, KADIN, AKTIFSPOR]"` + "\n"
	path := filepath.Join(tmpDir, "flo.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	records, err := NewCSVSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "cc294636-19f0-11eb-8d74-000d3a38a36f", first.MasterID)
	assert.Equal(t, "Android App", first.OrderChannel)
	assert.Equal(t, "2021-02-26", first.LastOrderDate)
	assert.Equal(t, 4, first.OrderNumOnline)
	assert.Equal(t, 1, first.OrderNumOffline)
	assert.InDelta(t, 139.99, first.ValueOffline, 0.001)
	assert.InDelta(t, 799.38, first.ValueOnline, 0.001)
	assert.Equal(t, []string{"KADIN"}, first.InterestedCategories)

	assert.Equal(t, []string{"ERKEK", "COCUK", "KADIN", "AKTIFSPOR"}, records[1].InterestedCategories)
}

func TestCSVSource_ColumnOrderIsFree(t *testing.T) {
	cols := strings.Split(strings.TrimSpace(floHeader), ",")
	for i, j := 0, len(cols)-1; i < j; i, j = i+1, j-1 {
		cols[i], cols[j] = cols[j], cols[i]
	}
	body := strings.Join(cols, ",") + "\n" +
		`[],200.0,100.0,0.0,1.0,2021-01-01,2021-01-01,2021-01-01,2020-01-01,Mobile,Ios App,id-1` + "\n"

	records, err := ReadCSV(context.Background(), strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "id-1", records[0].MasterID)
	assert.Equal(t, 1, records[0].OrderNumOnline)
	assert.Equal(t, 0, records[0].OrderNumOffline)
	assert.InDelta(t, 200.0, records[0].ValueOnline, 0.001)
	assert.Empty(t, records[0].InterestedCategories)
}

func TestCSVSource_SchemaMismatch(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing column", strings.Replace(floHeader, ",interested_in_categories_12", "", 1)},
		{"extra column", strings.Replace(floHeader, "master_id,", "master_id,store_id,", 1)},
		{"duplicate column", strings.Replace(floHeader, "order_channel,", "order_channel,order_channel,", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(context.Background(), strings.NewReader(tt.header))
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSchemaMismatch), err.Error())
		})
	}
}

func TestCSVSource_BadCount(t *testing.T) {
	body := floHeader + `id-1,Mobile,Mobile,2020-01-01,2021-01-01,2021-01-01,2021-01-01,2.5,1.0,1.0,1.0,[]` + "\n"

	_, err := ReadCSV(context.Background(), strings.NewReader(body))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSchemaMismatch))
	assert.Contains(t, err.Error(), "order_num_total_ever_online")
}

func TestCSVSource_MissingFile(t *testing.T) {
	_, err := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv")).Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeLoadFailed))
}

func TestJSONLSource_Load(t *testing.T) {
	body := `{"master_id":"a","order_channel":"Mobile","last_order_channel":"Offline","first_order_date":"2019-01-01","last_order_date":"2021-05-01","last_order_date_online":"2021-04-01","last_order_date_offline":"2021-05-01","order_num_total_ever_online":3,"order_num_total_ever_offline":2.0,"customer_value_total_ever_offline":50.5,"customer_value_total_ever_online":100,"interested_in_categories_12":["MEN","CHILDREN"]}

{"master_id":"b","order_channel":"Desktop","last_order_channel":"Desktop","first_order_date":"2020-01-01","last_order_date":"2021-01-01","last_order_date_online":"2021-01-01","last_order_date_offline":"2020-02-01","order_num_total_ever_online":1,"order_num_total_ever_offline":1,"customer_value_total_ever_offline":10,"customer_value_total_ever_online":20,"interested_in_categories_12":[]}
`
	path := filepath.Join(t.TempDir(), "flo.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	records, err := NewJSONLSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "a", records[0].MasterID)
	assert.Equal(t, 3, records[0].OrderNumOnline)
	assert.Equal(t, 2, records[0].OrderNumOffline)
	assert.InDelta(t, 50.5, records[0].ValueOffline, 0.001)
	assert.Equal(t, []string{"MEN", "CHILDREN"}, records[0].InterestedCategories)
	assert.Equal(t, []string{}, records[1].InterestedCategories)
}

func TestJSONLSource_SchemaViolations(t *testing.T) {
	valid := `"order_channel":"Mobile","last_order_channel":"Offline","first_order_date":"2019-01-01","last_order_date":"2021-05-01","last_order_date_online":"2021-04-01","last_order_date_offline":"2021-05-01","order_num_total_ever_offline":2,"customer_value_total_ever_offline":50.5,"customer_value_total_ever_online":100,"interested_in_categories_12":["MEN"]`

	tests := []struct {
		name string
		line string
	}{
		{"missing field", `{"master_id":"a",` + valid + `}`},
		{"negative count", `{"master_id":"a","order_num_total_ever_online":-1,` + valid + `}`},
		{"fractional count", `{"master_id":"a","order_num_total_ever_online":1.5,` + valid + `}`},
		{"extra field", `{"master_id":"a","order_num_total_ever_online":1,"store":"x",` + valid + `}`},
		{"categories as string", strings.Replace(`{"master_id":"a","order_num_total_ever_online":1,`+valid+`}`, `["MEN"]`, `"[MEN]"`, 1)},
		{"not json", `master_id=a`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSONL(context.Background(), strings.NewReader(tt.line))
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSchemaMismatch), err.Error())
		})
	}
}

func TestParseCategories(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"[KADIN]", []string{"KADIN"}},
		{"[AKTIFCOCUK, COCUK, KADIN]", []string{"AKTIFCOCUK", "COCUK", "KADIN"}},
		{"['MEN', 'WOMEN']", []string{"MEN", "WOMEN"}},
		{"[]", []string{}},
		{"", []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCategories(tt.in), tt.in)
	}
}

func TestParseCount(t *testing.T) {
	n, err := ParseCount("4.0")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = ParseCount("-1")
	assert.Error(t, err)
	_, err = ParseCount("abc")
	assert.Error(t, err)
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRFPStatusStages(t *testing.T) {
	require.True(t, RFPStatusDraft.Valid())
	require.False(t, RFPStatus("OPEN").Valid())
	require.Equal(t, -1, RFPStatus("OPEN").Stage())
	require.Less(t, RFPStatusDraft.Stage(), RFPStatusSent.Stage())
	require.Less(t, RFPStatusSent.Stage(), RFPStatusEvaluating.Stage())
	require.True(t, RFPStatusAwarded.Terminal())
	require.True(t, RFPStatusClosed.Terminal())
	require.False(t, RFPStatusEvaluating.Terminal())
}

func TestProposalStatus(t *testing.T) {
	require.True(t, ProposalStatusRejected.Valid())
	require.False(t, ProposalStatus("BOGUS").Valid())
	require.True(t, ProposalStatusParsed.Comparable())
	require.True(t, ProposalStatusEvaluated.Comparable())
	require.False(t, ProposalStatusSelected.Comparable())
}

func TestCategoryUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		err  bool
	}{
		{`"IT"`, "IT", false},
		{`["IT", " Hardware ", ""]`, "IT, Hardware", false},
		{`[]`, "", false},
		{`42`, "", true},
	}
	for _, tt := range tests {
		var c Category
		err := json.Unmarshal([]byte(tt.in), &c)
		if tt.err {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, c)
	}
	require.Nil(t, Category("").Ptr())
}

func TestVendorPatchApply(t *testing.T) {
	phone := "+1 555 0100"
	cat := Category("")
	v := &Vendor{Name: "Acme", Category: &phone}

	VendorPatch{Phone: &phone, Category: &cat}.Apply(v)
	require.Equal(t, "Acme", v.Name)
	require.Equal(t, &phone, v.Phone)
	require.Nil(t, v.Category)
}

func TestJSONBColumns(t *testing.T) {
	v, err := RFPItems(nil).Value()
	require.NoError(t, err)
	require.Equal(t, "[]", v)

	v, err = Budget{Amount: 5000, Currency: "USD"}.Value()
	require.NoError(t, err)
	require.IsType(t, "", v)

	var b Budget
	require.NoError(t, b.Scan([]byte(`{"amount":5000,"currency":"USD"}`)))
	require.Equal(t, float64(5000), b.Amount)

	var l StringList
	require.NoError(t, l.Scan(`["ISO 9001"]`))
	require.Equal(t, StringList{"ISO 9001"}, l)
	require.Error(t, l.Scan(42))

	out, err := json.Marshal(struct {
		R StringList `json:"r"`
	}{})
	require.NoError(t, err)
	require.JSONEq(t, `{"r":[]}`, string(out))
}

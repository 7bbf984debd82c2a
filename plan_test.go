package directory

import (
	"errors"
	"reflect"
	"testing"

	"github.com/srwicak/freelance-directory/hrana"
)

func TestPlanFor_Caching(t *testing.T) {
	Reset()

	p1, err := planFor[Freelancer]()
	if err != nil {
		t.Fatalf("planFor() error: %v", err)
	}
	p2, err := planFor[Freelancer]()
	if err != nil {
		t.Fatalf("planFor() error: %v", err)
	}
	if p1 != p2 {
		t.Error("planFor() should return cached plan")
	}

	Reset()
	p3, _ := planFor[Freelancer]()
	if p3 == p1 {
		t.Error("Reset() should clear the cache")
	}
}

func TestBuildPlan_Freelancer(t *testing.T) {
	plan, err := buildPlan[Freelancer]()
	if err != nil {
		t.Fatalf("buildPlan() error: %v", err)
	}

	wantCols := []string{"id", "name", "whatsapp", "field", "province", "city", "details", "portfolio", "linkedin", "created_at"}
	if got := plan.names(); !reflect.DeepEqual(got, wantCols) {
		t.Errorf("names() = %v, want %v", got, wantCols)
	}

	wantEnc := []string{"name", "whatsapp", "details", "portfolio", "linkedin"}
	if got := plan.encrypted(); !reflect.DeepEqual(got, wantEnc) {
		t.Errorf("encrypted() = %v, want %v", got, wantEnc)
	}
	if got := plan.decrypted(); !reflect.DeepEqual(got, wantEnc) {
		t.Errorf("decrypted() = %v, want %v", got, wantEnc)
	}
}

type badAlgoModel struct {
	ID   string `db:"id"`
	Name string `db:"name" store.encrypt:"rsa"`
}

type badMaskModel struct {
	ID  string `db:"id"`
	Age int64  `db:"age" send.mask:"name"`
}

type badKindModel struct {
	ID     string `db:"id"`
	Active bool   `db:"active"`
}

type noColumnsModel struct {
	ID string `json:"id"`
}

func TestBuildPlan_InvalidTags(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*tablePlan, error)
	}{
		{"unknown algorithm", buildPlan[badAlgoModel]},
		{"mask on integer", buildPlan[badMaskModel]},
		{"unsupported kind", buildPlan[badKindModel]},
		{"no columns", buildPlan[noColumnsModel]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if !errors.Is(err, ErrInvalidTag) {
				t.Errorf("expected ErrInvalidTag, got %v", err)
			}
		})
	}
}

func TestPlan_RecordAndLoad(t *testing.T) {
	plan, _ := planFor[Freelancer]()
	in := Freelancer{ID: "abc", Name: "Andi", City: "Bandung", CreatedAt: 1700000000}

	rec := plan.record(reflect.ValueOf(in))
	if rec["name"] != "Andi" || rec["created_at"] != int64(1700000000) {
		t.Errorf("record() = %v", rec)
	}

	row := hrana.NewRow()
	for k, v := range rec {
		row.Set(k, v)
	}

	var out Freelancer
	if err := plan.load(row, reflect.ValueOf(&out).Elem()); err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if out != in {
		t.Errorf("load() = %+v, want %+v", out, in)
	}
}

func TestPlan_LoadConversions(t *testing.T) {
	plan, _ := planFor[Freelancer]()

	row := hrana.NewRow()
	row.Set("id", int64(7))
	row.Set("details", nil)
	row.Set("created_at", "1700000000")

	var out Freelancer
	if err := plan.load(row, reflect.ValueOf(&out).Elem()); err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if out.ID != "7" {
		t.Errorf("ID = %q", out.ID)
	}
	if out.Details != "" {
		t.Errorf("Details = %q", out.Details)
	}
	if out.CreatedAt != 1700000000 {
		t.Errorf("CreatedAt = %d", out.CreatedAt)
	}

	row.Set("created_at", 1.5)
	if err := plan.load(row, reflect.ValueOf(&out).Elem()); !errors.Is(err, ErrInvalidRow) {
		t.Errorf("expected ErrInvalidRow, got %v", err)
	}
}

func TestConceal(t *testing.T) {
	in := Freelancer{
		ID:       "abc",
		Name:     "Andi Wijaya",
		Whatsapp: "081234567890",
		LinkedIn: "https://linkedin.com/in/andi",
	}

	out, err := Conceal(in)
	if err != nil {
		t.Fatalf("Conceal() error: %v", err)
	}

	if out.Whatsapp != "0812*****890" {
		t.Errorf("Whatsapp = %q", out.Whatsapp)
	}
	if out.LinkedIn != "" {
		t.Errorf("LinkedIn = %q", out.LinkedIn)
	}
	if out.Name != in.Name {
		t.Errorf("Name should be untouched, got %q", out.Name)
	}
	if in.Whatsapp != "081234567890" {
		t.Error("input should not be modified")
	}
}

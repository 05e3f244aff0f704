package model

import "testing"

func TestValidCategory(t *testing.T) {
	for _, c := range []string{CategoryMale, CategoryFemale, CategoryKids} {
		if !ValidCategory(c) {
			t.Errorf("ValidCategory(%q) = false", c)
		}
	}
	for _, c := range []string{"", "unisex", "Male", "FEMALE"} {
		if ValidCategory(c) {
			t.Errorf("ValidCategory(%q) = true", c)
		}
	}
}

func TestValidSize(t *testing.T) {
	for _, s := range []string{SizeS, SizeM, SizeL, SizeXL} {
		if !ValidSize(s) {
			t.Errorf("ValidSize(%q) = false", s)
		}
	}
	for _, s := range []string{"", "XS", "XXL", "m"} {
		if ValidSize(s) {
			t.Errorf("ValidSize(%q) = true", s)
		}
	}
}

func TestCanManage(t *testing.T) {
	owner := &User{ID: 1}
	other := &User{ID: 2}
	admin := &User{ID: 3, IsAdmin: true}

	if !owner.CanManage(1) {
		t.Error("owner cannot manage own resource")
	}
	if other.CanManage(1) {
		t.Error("stranger can manage resource")
	}
	if !admin.CanManage(1) {
		t.Error("admin cannot manage resource")
	}
}

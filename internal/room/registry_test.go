package room

import (
	"strings"
	"testing"
	"time"
)

func testRegistry() *Registry {
	return NewRegistry(testOptions(), nil, nil)
}

func TestCreateAssignsHostAndCode(t *testing.T) {
	reg := testRegistry()
	defer reg.Shutdown()

	fc := newFakeConn()
	rm, playerID, isHost, err := reg.Create(fc, "ana", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !isHost {
		t.Error("room creator should be host")
	}
	if playerID == "" {
		t.Error("expected a player id")
	}

	code := rm.Code()
	if len(code) != codeLength {
		t.Errorf("code should be %d characters, got %q", codeLength, code)
	}
	for _, c := range code {
		if !strings.ContainsRune(codeAlphabet, c) {
			t.Errorf("code %q contains %q, outside the alphabet", code, c)
		}
	}
	if reg.Count() != 1 {
		t.Errorf("registry should hold 1 room, got %d", reg.Count())
	}
}

func TestCreateRejectsBadNickname(t *testing.T) {
	reg := testRegistry()
	defer reg.Shutdown()

	cases := []string{"", strings.Repeat("x", 16)}
	for _, nick := range cases {
		if _, _, _, err := reg.Create(newFakeConn(), nick, ""); err != ErrInvalidInput {
			t.Errorf("nickname %q should be rejected, got %v", nick, err)
		}
	}
	if reg.Count() != 0 {
		t.Errorf("no room should be created on bad input, got %d", reg.Count())
	}

	// 15 runes, not bytes: multibyte nicknames of 15 characters pass.
	if !ValidNickname(strings.Repeat("ñ", 15)) {
		t.Error("15 multibyte runes should be a valid nickname")
	}
}

func TestJoinNormalizesCode(t *testing.T) {
	reg := testRegistry()
	defer reg.Shutdown()

	rm, _, _, err := reg.Create(newFakeConn(), "ana", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	lower := "  " + strings.ToLower(rm.Code()) + " "
	rm2, _, isHost, err := reg.Join(newFakeConn(), lower, "bob", "")
	if err != nil {
		t.Fatalf("case-insensitive join failed: %v", err)
	}
	if rm2 != rm {
		t.Error("join should land in the created room")
	}
	if isHost {
		t.Error("joiner should not be host")
	}
}

func TestJoinUnknownAndMalformedCodes(t *testing.T) {
	reg := testRegistry()
	defer reg.Shutdown()

	if _, _, _, err := reg.Join(newFakeConn(), "ZZZZ99", "ana", ""); err != ErrRoomNotFound {
		t.Errorf("unknown code should be ErrRoomNotFound, got %v", err)
	}

	for _, code := range []string{"", "abc", "TOOLONG99", "AB 23!"} {
		if _, _, _, err := reg.Join(newFakeConn(), code, "ana", ""); err != ErrInvalidInput {
			t.Errorf("malformed code %q should be ErrInvalidInput, got %v", code, err)
		}
	}
}

func TestJoinRejectsBadTeam(t *testing.T) {
	if _, err := ParseTeam("green"); err != ErrInvalidInput {
		t.Errorf("unknown team should be ErrInvalidInput, got %v", err)
	}
	if team, err := ParseTeam(""); err != nil || team != "" {
		t.Errorf("empty team should request auto-balance, got %q, %v", team, err)
	}
	if team, err := ParseTeam("blue"); err != nil || team != "blue" {
		t.Errorf("blue should parse, got %q, %v", team, err)
	}
}

func TestEmptyRoomRemovedFromRegistry(t *testing.T) {
	reg := testRegistry()
	defer reg.Shutdown()

	rm, playerID, _, err := reg.Create(newFakeConn(), "ana", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rm.Leave(playerID)

	deadline := time.After(2 * time.Second)
	for reg.Count() != 0 {
		select {
		case <-deadline:
			t.Fatal("empty room should disappear from the registry")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if _, _, _, err := reg.Join(newFakeConn(), rm.Code(), "bob", ""); err != ErrRoomNotFound {
		t.Errorf("joining a removed room should fail, got %v", err)
	}
}

func TestRoomsListing(t *testing.T) {
	reg := testRegistry()
	defer reg.Shutdown()

	rm1, _, _, err := reg.Create(newFakeConn(), "ana", "")
	if err != nil {
		t.Fatalf("create 1: %v", err)
	}
	rm2, _, _, err := reg.Create(newFakeConn(), "bob", "")
	if err != nil {
		t.Fatalf("create 2: %v", err)
	}

	infos := reg.Rooms()
	if len(infos) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(infos))
	}
	if infos[0].Code > infos[1].Code {
		t.Error("listing should be sorted by code")
	}
	for _, info := range infos {
		if info.Code != rm1.Code() && info.Code != rm2.Code() {
			t.Errorf("unexpected room %q in listing", info.Code)
		}
		if info.Players != 1 {
			t.Errorf("room %s should list 1 player, got %d", info.Code, info.Players)
		}
	}
}

func TestGenerateCodeUnambiguous(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := generateCode(codeLength)
		if len(code) != codeLength {
			t.Fatalf("code length should be %d, got %q", codeLength, code)
		}
		if strings.ContainsAny(code, "0O1I") {
			t.Fatalf("code %q contains an ambiguous character", code)
		}
	}
}

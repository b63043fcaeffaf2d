package catalog

import "testing"

func TestScannedFileValidate(t *testing.T) {
	tests := []struct {
		name    string
		file    ScannedFile
		wantErr bool
	}{
		{"exact ok", ScannedFile{Path: "/roms/foo.bin", MatchType: MatchExact, GameName: "Foo", RomName: "foo.bin"}, false},
		{"exact name differs", ScannedFile{Path: "/roms/bar.bin", MatchType: MatchExact, GameName: "Foo", RomName: "foo.bin"}, true},
		{"exact without game", ScannedFile{Path: "/roms/foo.bin", MatchType: MatchExact, RomName: "foo.bin"}, true},
		{"partial ok", ScannedFile{Path: "/roms/bar.bin", MatchType: MatchPartial, GameName: "Foo", RomName: "foo.bin"}, false},
		{"partial same name", ScannedFile{Path: "/roms/foo.bin", MatchType: MatchPartial, GameName: "Foo", RomName: "foo.bin"}, true},
		{"archive member exact", ScannedFile{Path: "/roms/set.zip/foo.bin", MatchType: MatchExact, GameName: "Foo", RomName: "foo.bin"}, false},
		{"miss ok", ScannedFile{Path: "/roms/x.bin", MatchType: MatchMiss}, false},
		{"miss with game", ScannedFile{Path: "/roms/x.bin", MatchType: MatchMiss, GameName: "Foo"}, true},
		{"unknown type", ScannedFile{Path: "/roms/x.bin", MatchType: "weird"}, true},
		{"empty path", ScannedFile{MatchType: MatchMiss}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.file.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRomHashAndNormalize(t *testing.T) {
	rom := Rom{Name: "a.bin", CRC: " ABCDEF01 ", MD5: "", SHA1: "DEADBEEF"}.Normalize()

	if rom.Hash(HashCRC) != "abcdef01" {
		t.Errorf("CRC not normalized: %q", rom.Hash(HashCRC))
	}
	if rom.Hash(HashSHA1) != "deadbeef" {
		t.Errorf("SHA1 not normalized: %q", rom.Hash(HashSHA1))
	}
	if rom.Hash(HashMD5) != "" {
		t.Errorf("MD5 should be absent, got %q", rom.Hash(HashMD5))
	}
}

func TestParseMatchType(t *testing.T) {
	for _, s := range []string{"exact", "Partial", "miss", "None"} {
		if _, err := ParseMatchType(s); err != nil {
			t.Errorf("ParseMatchType(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseMatchType("maybe"); err == nil {
		t.Error("Expected error for unknown match type")
	}
}

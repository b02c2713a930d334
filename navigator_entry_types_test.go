package exfat

import (
	"testing"
)

func TestEntryType_Dump(t *testing.T) {
	EntryType(0xab).Dump()
}

func TestEntryType_String(t *testing.T) {
	s := EntryType(0xab).String()
	if s != "EntryType<TYPE-CODE=(11) IS-CRITICAL=[false] IS-PRIMARY=[true] IS-IN-USE=[true] X-IS-REGULAR=[true] X-IS-UNUSED=[false] X-IS-END=[false]>" {
		t.Fatalf("String not correct: [%s]", s)
	}
}

func TestExfatFileDirectoryEntry_Dump(t *testing.T) {
	fdf := ExfatFileDirectoryEntry{}
	fdf.Dump()
}

func TestExfatStreamExtensionDirectoryEntry_Dump(t *testing.T) {
	sede := ExfatStreamExtensionDirectoryEntry{}
	sede.Dump()
}

func TestDirectoryEntryParserKey_String(t *testing.T) {
	depk := DirectoryEntryParserKey{}
	s := depk.String()
	if s != "DirectoryEntryParserKey<TYPE-CODE=(0) IS-CRITICAL=[false] IS-PRIMARY=[false]>" {
		t.Fatalf("String not correct: [%s]", s)
	}
}

func TestFileAttributes_String(t *testing.T) {
	s := FileAttributes(0x1234).String()
	if s != "FileAttributes<IS-READONLY=[false] IS-HIDDEN=[false] IS-SYSTEM=[true] IS-DIRECTORY=[true] IS-ARCHIVE=[true]>" {
		t.Fatalf("String not correct: [%s]", s)
	}
}

func TestExfatVolumeGuidDirectoryEntry_String(t *testing.T) {
	vgde := ExfatVolumeGuidDirectoryEntry{}
	s := vgde.String()
	if s != "VolumeGuidDirectoryEntry<SECONDARY-COUNT=(0) SET-CHECKSUM=(0x0000) GENERAL-PRIMARY-FLAGS=(0x0000) GUID=[0x0000000000000000...]>" {
		t.Fatalf("String not correct: [%s]", s)
	}
}

func TestExfatVolumeGuidDirectoryEntry_SecondaryCount(t *testing.T) {
	vgde := ExfatVolumeGuidDirectoryEntry{
		SecondaryCountRaw: 99,
	}

	if vgde.SecondaryCount() != 99 {
		t.Fatalf("SecondaryCount not correct.")
	}
}

func TestExfatVolumeGuidDirectoryEntry_TypeName(t *testing.T) {
	vgde := ExfatVolumeGuidDirectoryEntry{}
	if vgde.TypeName() != "VolumeGuid" {
		t.Fatalf("TypeName not correct.")
	}
}

func TestExfatTexFATDirectoryEntry_String(t *testing.T) {
	tfde := ExfatTexFATDirectoryEntry{}
	s := tfde.String()
	if s != "TexFATDirectoryEntry<>" {
		t.Fatalf("String not correct: [%s]", s)
	}
}

func TestExfatTexFATDirectoryEntry_TypeName(t *testing.T) {
	tfde := ExfatTexFATDirectoryEntry{}
	if tfde.TypeName() != "TexFAT" {
		t.Fatalf("TypeName not correct.")
	}
}

func TestExfatVendorExtensionDirectoryEntry_String(t *testing.T) {
	vede := ExfatVendorExtensionDirectoryEntry{}
	s := vede.String()
	if s != "VendorExtensionDirectoryEntry<GENERAL-SECONDARY-FLAGS=(00000000) GUID=(0x00000000000000000000000000000000)>" {
		t.Fatalf("String not correct: [%s]", s)
	}
}

func TestExfatVendorExtensionDirectoryEntry_TypeName(t *testing.T) {
	vede := ExfatVendorExtensionDirectoryEntry{}
	if vede.TypeName() != "VendorExtension" {
		t.Fatalf("TypeName not correct.")
	}
}

func TestExfatVendorAllocationDirectoryEntry_String(t *testing.T) {
	vade := ExfatVendorAllocationDirectoryEntry{}
	s := vade.String()
	if s != "VendorAllocationDirectoryEntry<GENERAL-SECONDARY-FLAGS=(00000000) GUID=(0x00000000000000000000000000000000) VENDOR-DEFINED=(0x00000000) FIRST-CLUSTER=(0) DATA-LENGTH=(0)>" {
		t.Fatalf("String not correct: [%s]", s)
	}
}

func TestExfatVendorAllocationDirectoryEntry_TypeName(t *testing.T) {
	vade := ExfatVendorAllocationDirectoryEntry{}
	if vade.TypeName() != "VendorAllocation" {
		t.Fatalf("TypeName not correct.")
	}
}

func TestExfatTimestamp_DecodeEncodeRoundTrip(t *testing.T) {
	et := EncodeExfatTimestamp(2019, 6, 15, 13, 42, 28)

	if et.Year() != 2019 {
		t.Fatalf("Year not correct: (%d)", et.Year())
	} else if et.Month() != 6 {
		t.Fatalf("Month not correct: (%d)", et.Month())
	} else if et.Day() != 15 {
		t.Fatalf("Day not correct: (%d)", et.Day())
	} else if et.Hour() != 13 {
		t.Fatalf("Hour not correct: (%d)", et.Hour())
	} else if et.Minute() != 42 {
		t.Fatalf("Minute not correct: (%d)", et.Minute())
	} else if et.Second() != 28 {
		t.Fatalf("Second not correct: (%d)", et.Second())
	}

	if et.IsValid() != true {
		t.Fatalf("Round-tripped timestamp should be valid.")
	}

	reencoded := EncodeExfatTimestamp(et.Year(), et.Month(), et.Day(), et.Hour(), et.Minute(), et.Second())
	if reencoded != et {
		t.Fatalf("Re-encoded timestamp does not match: (0x%08x) != (0x%08x)", uint32(reencoded), uint32(et))
	}
}

func TestExfatTimestamp_IsValid_RejectsOutOfRangeMonth(t *testing.T) {
	et := EncodeExfatTimestamp(2019, 0, 15, 13, 42, 28)
	if et.IsValid() != false {
		t.Fatalf("Timestamp with a zero month should be invalid.")
	}

	et = EncodeExfatTimestamp(2019, 13, 15, 13, 42, 28)
	if et.IsValid() != false {
		t.Fatalf("Timestamp with a month of 13 should be invalid.")
	}
}

func TestExfatTimestamp_IsValid_RejectsOutOfRangeDay(t *testing.T) {
	et := EncodeExfatTimestamp(2019, 6, 0, 13, 42, 28)
	if et.IsValid() != false {
		t.Fatalf("Timestamp with a zero day should be invalid.")
	}

	et = EncodeExfatTimestamp(2019, 6, 32, 13, 42, 28)
	if et.IsValid() != false {
		t.Fatalf("Timestamp with a day of 32 should be invalid.")
	}
}

func TestTenMsOffsetIsValid(t *testing.T) {
	if tenMsOffsetIsValid(199) != true {
		t.Fatalf("199 should be a valid 10ms increment.")
	}

	if tenMsOffsetIsValid(200) != false {
		t.Fatalf("200 should not be a valid 10ms increment.")
	}
}

package api

import "testing"

func TestDecodeStatsDeletionMarker(t *testing.T) {
	s, err := DecodeStats([]byte(`{"ID":"abc","Message":"container removed"}`))
	if err != nil {
		t.Fatalf("DecodeStats: %v", err)
	}
	if !s.Deleted() {
		t.Fatalf("expected deletion marker")
	}
	if _, err := DecodeStats([]byte(`{"CpuPercent":1}`)); err == nil {
		t.Fatalf("expected missing ID to be rejected")
	}
}

func TestDecodeComposeFilesHeartbeat(t *testing.T) {
	if _, ok, err := DecodeComposeFiles([]byte("  \n")); ok || err != nil {
		t.Fatalf("expected heartbeat to be skipped, ok=%v err=%v", ok, err)
	}
	files, ok, err := DecodeComposeFiles([]byte(`{"files":["web","db"]}`))
	if err != nil || !ok {
		t.Fatalf("DecodeComposeFiles: ok=%v err=%v", ok, err)
	}
	if len(files.Files) != 2 || files.Files[1] != "db" {
		t.Fatalf("unexpected files %v", files.Files)
	}
}

func TestDecodeContainersAttr(t *testing.T) {
	list, err := DecodeContainers([]byte(`[{"ID":"abc","Names":["/web"],"State":"running","Status":"Up 2 minutes","Image":"nginx:latest","Ports":[{"IP":"0.0.0.0","PrivatePort":80,"PublicPort":8080,"Type":"tcp"}]}]`))
	if err != nil {
		t.Fatalf("DecodeContainers: %v", err)
	}
	if len(list) != 1 || list[0].DisplayName() != "web" {
		t.Fatalf("unexpected containers %+v", list)
	}
	if list[0].Attr("State") != "running" {
		t.Fatalf("unexpected State attr %v", list[0].Attr("State"))
	}
	if ports, ok := list[0].Attr("Ports").([]Port); !ok || ports[0].PublicPort != 8080 {
		t.Fatalf("unexpected Ports attr %v", list[0].Attr("Ports"))
	}
	if _, err := DecodeContainers([]byte(`{"not":"a list"}`)); err == nil {
		t.Fatalf("expected malformed snapshot to fail")
	}
}

package ipc

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"os/user"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

var (
	ErrPeerUnauthorized = errors.New("peer unauthorized")
)

// PeerIdentity is what §4.F step 1 calls "the authenticated peer
// identity": the connecting process's PID/UID (read via LOCAL_PEERPID/
// LOCAL_PEERCRED on the raw socket) plus its code-signing bundle and team
// identifiers (read by shelling out to codesign, since no cgo-free Go
// binding for SecCodeCopySigningInformation exists in the pack).
type PeerIdentity struct {
	PID      int32
	UID      uint32
	BundleID string
	TeamID   string
}

// HomeDir resolves the peer's home directory from its UID via os/user,
// per SPEC_FULL.md §4.G.1 — never from this process's own environment.
func (p PeerIdentity) HomeDir() (string, error) {
	u, err := user.LookupId(strconv.FormatUint(uint64(p.UID), 10))
	if err != nil {
		return "", fmt.Errorf("resolving home directory for uid %d: %w", p.UID, err)
	}
	return u.HomeDir, nil
}

// authenticatePeer implements spec.md §4.F step 1: reject messages whose
// peer identity does not match the configured client bundle/team
// identity.
func authenticatePeer(conn *unixConn, wantBundleID, wantTeamID string) (PeerIdentity, error) {
	id, err := peerIdentity(conn)
	if err != nil {
		return PeerIdentity{}, fmt.Errorf("%w: %v", ErrPeerUnauthorized, err)
	}
	if id.BundleID != wantBundleID || id.TeamID != wantTeamID {
		return PeerIdentity{}, fmt.Errorf("%w: bundle=%q team=%q", ErrPeerUnauthorized, id.BundleID, id.TeamID)
	}
	return id, nil
}

// peerIdentity reads the connecting process's PID and UID off the raw
// socket via LOCAL_PEERPID/LOCAL_PEERCRED (Darwin's analogue of Linux's
// SO_PEERCRED), then shells out to ps + codesign to recover its code
// identity.
func peerIdentity(conn *unixConn) (PeerIdentity, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return PeerIdentity{}, fmt.Errorf("accessing raw conn: %w", err)
	}

	var pid int32
	var uid uint32
	var sockErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		p, e := unix.GetsockoptInt(int(fd), unix.SOL_LOCAL, unix.LOCAL_PEERPID)
		if e != nil {
			sockErr = fmt.Errorf("LOCAL_PEERPID: %w", e)
			return
		}
		pid = int32(p)

		cred, e := unix.GetsockoptXucred(int(fd), unix.SOL_LOCAL, unix.LOCAL_PEERCRED)
		if e != nil {
			sockErr = fmt.Errorf("LOCAL_PEERCRED: %w", e)
			return
		}
		uid = cred.Uid
	})
	if ctrlErr != nil {
		return PeerIdentity{}, fmt.Errorf("raw control: %w", ctrlErr)
	}
	if sockErr != nil {
		return PeerIdentity{}, sockErr
	}

	execPath, err := peerExecutablePath(pid)
	if err != nil {
		return PeerIdentity{}, err
	}
	bundleID, teamID, err := codesignIdentity(execPath)
	if err != nil {
		return PeerIdentity{}, err
	}

	return PeerIdentity{PID: pid, UID: uid, BundleID: bundleID, TeamID: teamID}, nil
}

// peerExecutablePath shells out to ps for the connecting PID's executable
// path; there's no portable /proc on Darwin.
func peerExecutablePath(pid int32) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "ps", "-p", strconv.Itoa(int(pid)), "-o", "comm=").Output()
	if err != nil {
		return "", fmt.Errorf("resolving executable path for pid %d: %w", pid, err)
	}
	path := strings.TrimSpace(string(out))
	if path == "" {
		return "", fmt.Errorf("empty executable path for pid %d", pid)
	}
	return path, nil
}

// codesignIdentity shells out to `codesign -dvvv` and scans its
// fixed-format stderr text for the Identifier and TeamIdentifier lines.
func codesignIdentity(execPath string) (bundleID, teamID string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "/usr/bin/codesign", "-dvvv", execPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if runErr := cmd.Run(); runErr != nil {
		return "", "", fmt.Errorf("codesign -dvvv %s: %w: %s", execPath, runErr, stderr.String())
	}

	scanner := bufio.NewScanner(&stderr)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "Identifier="):
			bundleID = strings.TrimPrefix(line, "Identifier=")
		case strings.HasPrefix(line, "TeamIdentifier="):
			teamID = strings.TrimPrefix(line, "TeamIdentifier=")
		}
	}
	if bundleID == "" {
		return "", "", fmt.Errorf("codesign output for %s had no Identifier line", execPath)
	}
	return bundleID, teamID, nil
}

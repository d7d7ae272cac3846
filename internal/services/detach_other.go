//go:build !unix

package services

import "os/exec"

func detach(*exec.Cmd) {}

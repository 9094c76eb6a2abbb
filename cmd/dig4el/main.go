package main

import (
	"os"

	"github.com/alterfero/dig4el-sub001/internal/util"
	"github.com/alterfero/dig4el-sub001/pkg/logger"
)

func main() {
	util.LoadEnv()

	if err := newRootCmd().Execute(); err != nil {
		logger.Error("Command execution failed", "err", err)
		os.Exit(1)
	}
}

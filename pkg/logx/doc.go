// Package logx provides a thin structured logging facade over zerolog.
//
// It supports runtime reconfiguration (level and sinks) through Service.Apply
// while handed-out Logger values stay live.
package logx

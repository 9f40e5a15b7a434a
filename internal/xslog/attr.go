package xslog

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/drivehr/jobsync/internal/xhttp"
)

const keyError = "error"

func Error(err error) slog.Attr {
	return slog.String(keyError, err.Error())
}

func RequestID(requestID string) slog.Attr {
	const requestIDKey = "request_id"
	return slog.String(requestIDKey, requestID)
}

func Stack() slog.Attr {
	const stackKey = "stack"
	return slog.String(stackKey, string(debug.Stack()))
}

func HTTPStatus(status int) slog.Attr {
	const statusKey = "status"
	return slog.Int(statusKey, status)
}

func Duration(duration time.Duration) slog.Attr {
	const durationKey = "duration"
	return slog.Duration(durationKey, duration)
}

func RequestMethod(r *http.Request) slog.Attr {
	const methodKey = "method"
	return slog.String(methodKey, r.Method)
}

func RequestPath(r *http.Request) slog.Attr {
	const pathKey = "path"
	return slog.String(pathKey, r.URL.Path)
}

func IP(ip string) slog.Attr {
	const ipKey = "ip"
	return slog.String(ipKey, ip)
}

func RequestIP(r *http.Request) slog.Attr {
	return IP(xhttp.ClientIP(r))
}

func JobID(id string) slog.Attr {
	const jobIDKey = "job_id"
	return slog.String(jobIDKey, id)
}

func Source(source string) slog.Attr {
	const sourceKey = "source"
	return slog.String(sourceKey, source)
}

func Count(count int) slog.Attr {
	const countKey = "count"
	return slog.Int(countKey, count)
}

func Created(n int) slog.Attr {
	const createdKey = "created"
	return slog.Int(createdKey, n)
}

func Updated(n int) slog.Attr {
	const updatedKey = "updated"
	return slog.Int(updatedKey, n)
}

func Skipped(n int) slog.Attr {
	const skippedKey = "skipped"
	return slog.Int(skippedKey, n)
}

func Removed(n int) slog.Attr {
	const removedKey = "removed"
	return slog.Int(removedKey, n)
}

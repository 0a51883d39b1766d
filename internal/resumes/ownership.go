package resumes

import "context"

type contextKey string

const resumeCtxKey contextKey = "resume"

func SetResumeInContext(ctx context.Context, resume *Resume) context.Context {
	return context.WithValue(ctx, resumeCtxKey, resume)
}

func GetResumeFromContext(ctx context.Context) *Resume {
	resume, _ := ctx.Value(resumeCtxKey).(*Resume)
	return resume
}

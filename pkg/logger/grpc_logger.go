package logger

import (
	"context"
	"path"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewGrpcUnaryClientInterceptor는 외부 gRPC 서비스(SpiceDB 등) 호출을 로깅하는 클라이언트 인터셉터를 생성합니다.
func NewGrpcUnaryClientInterceptor(logger *zap.Logger) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		startTime := time.Now()

		err := invoker(ctx, method, req, reply, cc, opts...)

		fields := []zap.Field{
			zap.String("grpc.service", path.Dir(method)[1:]),
			zap.String("grpc.method", path.Base(method)),
			zap.String("grpc.target", cc.Target()),
			zap.Duration("grpc.duration", time.Since(startTime)),
		}

		code := status.Code(err)
		fields = append(fields, zap.String("grpc.code", code.String()))

		switch code {
		case codes.OK:
			logger.Debug("gRPC 호출 완료", fields...)
		case codes.Canceled, codes.DeadlineExceeded, codes.ResourceExhausted,
			codes.Aborted, codes.Unavailable:
			logger.Warn("gRPC 호출 실패", append(fields, zap.Error(err))...)
		default:
			logger.Error("gRPC 호출 오류", append(fields, zap.Error(err))...)
		}

		return err
	}
}

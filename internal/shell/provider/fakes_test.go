package provider

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codedeploy"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	taggingtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"
)

// =============================================================================
// Tagging Fake
// =============================================================================

type fakeTagging struct {
	mu     sync.Mutex
	pages  []*resourcegroupstaggingapi.GetResourcesOutput
	err    error
	inputs []resourcegroupstaggingapi.GetResourcesInput
}

func (f *fakeTagging) GetResources(ctx context.Context, params *resourcegroupstaggingapi.GetResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.GetResourcesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inputs = append(f.inputs, *params)
	if f.err != nil {
		return nil, f.err
	}
	idx := len(f.inputs) - 1
	if idx >= len(f.pages) {
		return &resourcegroupstaggingapi.GetResourcesOutput{}, nil
	}
	return f.pages[idx], nil
}

func taggingPage(next string, arns ...string) *resourcegroupstaggingapi.GetResourcesOutput {
	out := &resourcegroupstaggingapi.GetResourcesOutput{}
	for _, arn := range arns {
		out.ResourceTagMappingList = append(out.ResourceTagMappingList, taggingtypes.ResourceTagMapping{
			ResourceARN: aws.String(arn),
		})
	}
	if next != "" {
		out.PaginationToken = aws.String(next)
	}
	return out
}

// =============================================================================
// Lambda Fake
// =============================================================================

type fakeLambda struct {
	mu sync.Mutex

	// functions maps "<id>:<alias>" to its configuration.
	functions map[string]*lambdatypes.FunctionConfiguration
	getErr    map[string]error

	// versions maps "<id>" to its pages, keyed by the marker that requests them
	// ("" is the first page).
	versions map[string]map[string]*lambda.ListVersionsByFunctionOutput
	listErr  map[string]error

	getCalls  []string
	listCalls []lambda.ListVersionsByFunctionInput
}

func newFakeLambda() *fakeLambda {
	return &fakeLambda{
		functions: map[string]*lambdatypes.FunctionConfiguration{},
		getErr:    map[string]error{},
		versions:  map[string]map[string]*lambda.ListVersionsByFunctionOutput{},
		listErr:   map[string]error{},
	}
}

// addFunction registers a function with a live alias and a single page of
// versions.
func (f *fakeLambda) addFunction(id, name, alias, liveVersion string, versions ...string) {
	f.functions[id+":"+alias] = &lambdatypes.FunctionConfiguration{
		FunctionName: aws.String(name),
		Version:      aws.String(liveVersion),
	}
	f.addVersionPage(id, "", "", name, versions...)
}

func (f *fakeLambda) addVersionPage(id, marker, next, name string, versions ...string) {
	if f.versions[id] == nil {
		f.versions[id] = map[string]*lambda.ListVersionsByFunctionOutput{}
	}
	out := &lambda.ListVersionsByFunctionOutput{}
	for _, v := range versions {
		out.Versions = append(out.Versions, lambdatypes.FunctionConfiguration{
			FunctionName: aws.String(name),
			Version:      aws.String(v),
		})
	}
	if next != "" {
		out.NextMarker = aws.String(next)
	}
	f.versions[id][marker] = out
}

func (f *fakeLambda) GetFunction(ctx context.Context, params *lambda.GetFunctionInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(params.FunctionName)
	f.getCalls = append(f.getCalls, name)
	if err := f.getErr[name]; err != nil {
		return nil, err
	}
	cfg, ok := f.functions[name]
	if !ok {
		return nil, &lambdatypes.ResourceNotFoundException{Message: aws.String("Function not found: " + name)}
	}
	return &lambda.GetFunctionOutput{Configuration: cfg}, nil
}

func (f *fakeLambda) ListVersionsByFunction(ctx context.Context, params *lambda.ListVersionsByFunctionInput, optFns ...func(*lambda.Options)) (*lambda.ListVersionsByFunctionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls = append(f.listCalls, *params)
	name := aws.ToString(params.FunctionName)
	if err := f.listErr[name]; err != nil {
		return nil, err
	}
	page, ok := f.versions[name][aws.ToString(params.Marker)]
	if !ok {
		return &lambda.ListVersionsByFunctionOutput{}, nil
	}
	return page, nil
}

// =============================================================================
// CodeDeploy Fake
// =============================================================================

type fakeCodeDeploy struct {
	mu     sync.Mutex
	inputs []*codedeploy.CreateDeploymentInput
	err    error
	ids    []string
}

func (f *fakeCodeDeploy) CreateDeployment(ctx context.Context, params *codedeploy.CreateDeploymentInput, optFns ...func(*codedeploy.Options)) (*codedeploy.CreateDeploymentOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	out := &codedeploy.CreateDeploymentOutput{}
	if n := len(f.inputs) - 1; n < len(f.ids) {
		out.DeploymentId = aws.String(f.ids[n])
	}
	return out, nil
}
